package workplan

import "errors"

var ErrNotFound = errors.New("work plan not found")

const (
	StateDraft     = "Draft"
	StateConfirmed = "Confirmed"
	StateClosed    = "Closed"
)

// WorkPlan is a monthly plan owned by one user. Confirmed and Closed plans
// lock their tasks.
type WorkPlan struct {
	ID      int64
	OwnerID int64
	// CreatedBy may differ from OwnerID when a manager drafts the plan on
	// the owner's behalf.
	CreatedBy int64
	State     string
	Month     int
	Year      int
}

func (p WorkPlan) Locked() bool {
	return p.State == StateConfirmed || p.State == StateClosed
}
