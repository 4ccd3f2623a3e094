package assignment

import "context"

type Repository interface {
	// ListActiveByUser returns the user's active assignments.
	ListActiveByUser(ctx context.Context, userID int64) ([]Assignment, error)
	// ExistsForTask reports whether the user already holds an active
	// assignment on the task.
	ExistsForTask(ctx context.Context, taskID, userID int64) (bool, error)
	// ChangeUser moves an assignment to a different user.
	ChangeUser(ctx context.Context, id, newUserID int64) error
	// Delete removes an assignment. Used when a reassignment would create a
	// duplicate (taskId, userId) pair and the source row is merged away.
	Delete(ctx context.Context, id int64) error
}
