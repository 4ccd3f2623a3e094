package progresslog

import "time"

// Entry is one progress-log record on a task: an optional new progress value
// plus a free-text note. Entries are append-only; the task's progress column
// is a roll-up of the latest entry that carried a value.
type Entry struct {
	ID        int64
	TaskID    int64
	AuthorID  *int64
	Progress  *int
	Comment   string
	CreatedAt time.Time
}
