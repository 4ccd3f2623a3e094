package assignment

import "errors"

var ErrNotFound = errors.New("assignment not found")

const (
	TypeResponsible  = "Responsible"
	TypeCollaborator = "Collaborator"
	TypeReviewer     = "Reviewer"
)

// Assignment links a user to a task in a given capacity. A task may carry
// at most one assignment per user.
type Assignment struct {
	ID     int64
	TaskID int64
	UserID int64
	Type   string
	Active bool
}
