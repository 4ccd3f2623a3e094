package auditlog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Audit action names, grouped by resource.
const (
	ActionEditDecision         = "task.edit_decision"
	ActionTaskFieldUpdated     = "task.field_updated"
	ActionTaskProgressRecorded = "task.progress_recorded"
	ActionChangeRequestCreated = "change_request.created"
	ActionChangeRequestApplied = "change_request.applied"
	ActionTasksReassigned      = "assignment.bulk_reassigned"
)

const (
	ResourceTask          = "task"
	ResourceChangeRequest = "change_request"
	ResourceAssignment    = "assignment"
)

// Entry is one audit record. Details carries action-specific payload and is
// stored as JSON.
type Entry struct {
	ID           uuid.UUID
	ActorID      int64
	Action       string
	ResourceType string
	ResourceID   string
	Details      map[string]any
	CreatedAt    time.Time
}

// Recorded is published on the event bus after an entry is written.
type Recorded struct {
	Entry Entry
}

type Repository interface {
	Create(ctx context.Context, entry Entry) error
}
