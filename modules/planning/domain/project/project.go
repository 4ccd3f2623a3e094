package project

import "errors"

var ErrNotFound = errors.New("project not found")

const (
	TypeStrategic   = "Strategic"
	TypeOperational = "Operational"

	StateDraft       = "Draft"
	StateConfirmed   = "Confirmed"
	StateInExecution = "InExecution"
	StateClosed      = "Closed"
)

type Project struct {
	ID               int64
	Name             string
	Type             string
	State            string
	RequiresApproval bool
	CreatorID        int64
}

// Governed reports whether task edits under this project go through the
// approval workflow by default.
func (p Project) Governed() bool {
	return p.Type == TypeStrategic || p.RequiresApproval
}
