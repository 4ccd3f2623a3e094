package progresslog

import "context"

type Repository interface {
	// Create appends an entry and returns it with id and timestamp assigned.
	Create(ctx context.Context, entry Entry) (Entry, error)
	// ListByTask returns a task's entries, newest first.
	ListByTask(ctx context.Context, taskID int64) ([]Entry, error)
}
