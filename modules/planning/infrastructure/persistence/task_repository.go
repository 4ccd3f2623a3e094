package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/task"
	"github.com/clarityhq/workplan/pkg/composables"
	"github.com/clarityhq/workplan/pkg/serrors"
)

const (
	taskByIDQuery = `
		SELECT
			t.id,
			t.project_id,
			t.plan_id,
			t.title,
			COALESCE(t.description, ''),
			t.state,
			COALESCE(t.priority, ''),
			t.progress,
			t.target_date,
			t.planned_start,
			t.planned_end,
			t.started_at,
			t.completed_at,
			t.creator_id,
			t.created_at,
			t.updated_at
		FROM tasks t
		WHERE t.id = $1`

	taskStatesQuery = `SELECT id, state FROM tasks WHERE id = ANY($1)`

	taskProgressNoteInsertQuery = `
		INSERT INTO task_progress_entries (task_id, comment)
		VALUES ($1, $2)`
)

// taskColumns maps governed field keys to their column and SQL type. Values
// arrive as strings; the cast delegates coercion to Postgres, with empty
// strings becoming NULL for nullable columns.
var taskColumns = map[string]struct {
	column  string
	sqlType string
}{
	task.FieldTitle:        {"title", "text"},
	task.FieldDescription:  {"description", "text"},
	task.FieldState:        {"state", "text"},
	task.FieldPriority:     {"priority", "text"},
	task.FieldProgress:     {"progress", "int"},
	task.FieldTargetDate:   {"target_date", "date"},
	task.FieldPlannedStart: {"planned_start", "date"},
	task.FieldPlannedEnd:   {"planned_end", "date"},
	task.FieldStartedAt:    {"started_at", "timestamptz"},
	task.FieldCompletedAt:  {"completed_at", "timestamptz"},
}

type PgTaskRepository struct{}

func NewTaskRepository() task.Repository {
	return &PgTaskRepository{}
}

func (r *PgTaskRepository) GetByID(ctx context.Context, id int64) (task.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return task.Task{}, err
	}
	var t task.Task
	err = tx.QueryRow(ctx, taskByIDQuery, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.PlanID,
		&t.Title,
		&t.Description,
		&t.State,
		&t.Priority,
		&t.Progress,
		&t.TargetDate,
		&t.PlannedStart,
		&t.PlannedEnd,
		&t.StartedAt,
		&t.CompletedAt,
		&t.CreatorID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, task.ErrNotFound
	}
	return t, err
}

func (r *PgTaskRepository) UpdateField(ctx context.Context, id int64, field, value string) error {
	if field == task.FieldProgressLog {
		return r.appendProgressNote(ctx, id, value)
	}
	col, ok := taskColumns[field]
	if !ok {
		return serrors.NewFieldNotAllowedError(field)
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(
		`UPDATE tasks SET %s = NULLIF($2, '')::%s, updated_at = now() WHERE id = $1`,
		col.column, col.sqlType,
	)
	tag, err := tx.Exec(ctx, query, id, value)
	if err != nil {
		return errors.Wrapf(err, "updating task field %s", field)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}
	return nil
}

// appendProgressNote records a progress-log write arriving through the
// generic field-update path. The log is append-only, so the "update" is an
// insert; authorship travels with service-level entries, not this path.
func (r *PgTaskRepository) appendProgressNote(ctx context.Context, id int64, comment string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, taskProgressNoteInsertQuery, id, comment)
	return errors.Wrap(err, "appending progress note")
}

func (r *PgTaskRepository) UpdateFields(ctx context.Context, id int64, fields map[string]string) error {
	for field, value := range fields {
		if err := r.UpdateField(ctx, id, field, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgTaskRepository) StatesByID(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, taskStatesQuery, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying task states")
	}
	defer rows.Close()

	out := make(map[int64]string, len(ids))
	for rows.Next() {
		var id int64
		var state string
		if err := rows.Scan(&id, &state); err != nil {
			return nil, err
		}
		out[id] = state
	}
	return out, rows.Err()
}
