package task

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Task, error)
	// UpdateField writes a single field as a string; the store coerces the
	// value to the column type.
	UpdateField(ctx context.Context, id int64, field, value string) error
	// UpdateFields writes several fields at once, same coercion contract.
	UpdateFields(ctx context.Context, id int64, fields map[string]string) error
	// StatesByID returns the lifecycle state of each existing task id.
	StatesByID(ctx context.Context, ids []int64) (map[int64]string, error)
}
