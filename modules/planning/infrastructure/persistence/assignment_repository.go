package persistence

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/assignment"
	"github.com/clarityhq/workplan/pkg/composables"
)

const (
	assignmentListActiveQuery = `
		SELECT a.id, a.task_id, a.user_id, a.type, a.active
		FROM assignments a
		WHERE a.user_id = $1 AND a.active
		ORDER BY a.task_id, a.id`

	assignmentExistsQuery = `
		SELECT EXISTS (
			SELECT 1 FROM assignments WHERE task_id = $1 AND user_id = $2 AND active
		)`

	assignmentChangeUserQuery = `UPDATE assignments SET user_id = $2, updated_at = now() WHERE id = $1`

	assignmentDeleteQuery = `DELETE FROM assignments WHERE id = $1`
)

type PgAssignmentRepository struct{}

func NewAssignmentRepository() assignment.Repository {
	return &PgAssignmentRepository{}
}

func (r *PgAssignmentRepository) ListActiveByUser(ctx context.Context, userID int64) ([]assignment.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, assignmentListActiveQuery, userID)
	if err != nil {
		return nil, errors.Wrap(err, "listing assignments")
	}
	defer rows.Close()

	var out []assignment.Assignment
	for rows.Next() {
		var a assignment.Assignment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.UserID, &a.Type, &a.Active); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PgAssignmentRepository) ExistsForTask(ctx context.Context, taskID, userID int64) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx, assignmentExistsQuery, taskID, userID).Scan(&exists)
	return exists, err
}

func (r *PgAssignmentRepository) ChangeUser(ctx context.Context, id, newUserID int64) error {
	return r.exec(ctx, assignmentChangeUserQuery, id, newUserID)
}

func (r *PgAssignmentRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, assignmentDeleteQuery, id)
}

func (r *PgAssignmentRepository) exec(ctx context.Context, query string, args ...any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrNotFound
	}
	return nil
}
