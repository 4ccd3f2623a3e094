package task

import (
	"errors"
	"strconv"
	"time"
)

var ErrNotFound = errors.New("task not found")

const (
	StatePending    = "Pending"
	StateInProgress = "InProgress"
	StateBlocked    = "Blocked"
	StateDraft      = "Draft"
	StateDone       = "Done"
	StateDiscarded  = "Discarded"
)

// Field keys used by governance and partial updates. These are the wire
// names the API accepts and the change-request rows store.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldState        = "state"
	FieldProgress     = "progress"
	FieldPriority     = "priority"
	FieldTargetDate   = "targetDate"
	FieldPlannedStart = "plannedStart"
	FieldPlannedEnd   = "plannedEnd"
	FieldStartedAt    = "startedAt"
	FieldCompletedAt  = "completedAt"
	FieldProgressLog  = "progressLog"
)

// executionFields track day-to-day execution rather than planning intent.
// Edits limited to these apply directly even when the task is under
// governance.
var executionFields = map[string]struct{}{
	FieldState:       {},
	FieldProgress:    {},
	FieldStartedAt:   {},
	FieldCompletedAt: {},
	FieldProgressLog: {},
}

func IsExecutionField(field string) bool {
	_, ok := executionFields[field]
	return ok
}

// DateLayout is how date-valued fields are rendered into change requests.
const DateLayout = "2006-01-02"

// Task is a unit of work. A task without a project is personal; a task
// linked to a work plan is subject to plan locking.
type Task struct {
	ID           int64
	ProjectID    *int64
	PlanID       *int64
	Title        string
	Description  string
	State        string
	Priority     string
	Progress     int
	TargetDate   *time.Time
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	StartedAt    *time.Time
	CompletedAt  *time.Time
	CreatorID    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ReassignableState reports whether assignments on a task in this state may
// still move between users. Finished and discarded work is never reassigned.
func ReassignableState(state string) bool {
	switch state {
	case StatePending, StateInProgress, StateBlocked, StateDraft:
		return true
	}
	return false
}

func (t Task) Reassignable() bool {
	return ReassignableState(t.State)
}

// FieldValue returns the current value of a governed field coerced to a
// string (absent values coerce to ""), and whether the field key is known.
func (t Task) FieldValue(field string) (string, bool) {
	switch field {
	case FieldTitle:
		return t.Title, true
	case FieldDescription:
		return t.Description, true
	case FieldState:
		return t.State, true
	case FieldPriority:
		return t.Priority, true
	case FieldProgress:
		return strconv.Itoa(t.Progress), true
	case FieldTargetDate:
		return formatDate(t.TargetDate), true
	case FieldPlannedStart:
		return formatDate(t.PlannedStart), true
	case FieldPlannedEnd:
		return formatDate(t.PlannedEnd), true
	case FieldStartedAt:
		return formatDate(t.StartedAt), true
	case FieldCompletedAt:
		return formatDate(t.CompletedAt), true
	}
	return "", false
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
