package changerequest

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("change request not found")
	// ErrInvalidState is returned when a resolution targets a request that
	// is no longer pending.
	ErrInvalidState = errors.New("change request is not pending")
)

const (
	StatePending  = "Pending"
	StateApproved = "Approved"
	StateRejected = "Rejected"
)

// transitions is the full state machine. Terminal states have no exits;
// resolved requests are immutable.
var transitions = map[string][]string{
	StatePending: {StateApproved, StateRejected},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ChangeRequest records a proposed edit to a single task field. Previous
// and proposed values are stored as strings regardless of the field type.
type ChangeRequest struct {
	ID                int64
	TaskID            int64
	RequesterID       int64
	Field             string
	PreviousValue     string
	ProposedValue     string
	Reason            string
	State             string
	ApproverID        *int64
	ResolutionComment string
	CreatedAt         time.Time
	ResolvedAt        *time.Time
}

// Transition moves the request to a terminal state, enforcing the state
// machine.
func (cr *ChangeRequest) Transition(to string) error {
	if !CanTransition(cr.State, to) {
		return ErrInvalidState
	}
	cr.State = to
	return nil
}
