package persistence

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/progresslog"
	"github.com/clarityhq/workplan/pkg/composables"
)

const (
	progressEntryInsertQuery = `
		INSERT INTO task_progress_entries (task_id, author_id, progress, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	progressEntriesByTaskQuery = `
		SELECT id, task_id, author_id, progress, comment, created_at
		FROM task_progress_entries
		WHERE task_id = $1
		ORDER BY created_at DESC, id DESC`
)

type PgProgressLogRepository struct{}

func NewProgressLogRepository() progresslog.Repository {
	return &PgProgressLogRepository{}
}

func (r *PgProgressLogRepository) Create(ctx context.Context, entry progresslog.Entry) (progresslog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return progresslog.Entry{}, err
	}
	err = tx.QueryRow(ctx, progressEntryInsertQuery,
		entry.TaskID,
		entry.AuthorID,
		entry.Progress,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return progresslog.Entry{}, errors.Wrap(err, "creating progress entry")
	}
	return entry, nil
}

func (r *PgProgressLogRepository) ListByTask(ctx context.Context, taskID int64) ([]progresslog.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, progressEntriesByTaskQuery, taskID)
	if err != nil {
		return nil, errors.Wrap(err, "listing progress entries")
	}
	defer rows.Close()

	var out []progresslog.Entry
	for rows.Next() {
		var e progresslog.Entry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.AuthorID, &e.Progress, &e.Comment, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
