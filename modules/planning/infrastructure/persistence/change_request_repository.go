package persistence

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/planning/domain/changerequest"
	"github.com/clarityhq/workplan/pkg/composables"
)

const (
	changeRequestInsertQuery = `
		INSERT INTO change_requests (
			task_id, requester_id, field, previous_value, proposed_value,
			reason, state, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	changeRequestSelectQuery = `
		SELECT
			cr.id,
			cr.task_id,
			cr.requester_id,
			cr.field,
			cr.previous_value,
			cr.proposed_value,
			COALESCE(cr.reason, ''),
			cr.state,
			cr.approver_id,
			COALESCE(cr.resolution_comment, ''),
			cr.created_at,
			cr.resolved_at
		FROM change_requests cr`

	changeRequestByIDQuery = changeRequestSelectQuery + ` WHERE cr.id = $1`

	changeRequestPendingQuery = changeRequestSelectQuery + `
		WHERE cr.state = 'Pending'
		ORDER BY cr.created_at DESC, cr.id DESC`

	changeRequestPendingByRequestersQuery = changeRequestSelectQuery + `
		WHERE cr.state = 'Pending' AND cr.requester_id = ANY($1)
		ORDER BY cr.created_at DESC, cr.id DESC`

	// The state predicate makes resolution a conditional claim: of two
	// concurrent resolutions only one updates a row, the other sees zero rows
	// affected and surfaces InvalidState.
	changeRequestResolveQuery = `
		UPDATE change_requests
		SET state = $2, approver_id = $3, resolution_comment = NULLIF($4, ''), resolved_at = $5
		WHERE id = $1 AND state = 'Pending'`

	changeRequestExistsQuery = `SELECT 1 FROM change_requests WHERE id = $1`
)

type PgChangeRequestRepository struct{}

func NewChangeRequestRepository() changerequest.Repository {
	return &PgChangeRequestRepository{}
}

func (r *PgChangeRequestRepository) Create(ctx context.Context, cr *changerequest.ChangeRequest) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	out := *cr
	err = tx.QueryRow(ctx, changeRequestInsertQuery,
		cr.TaskID,
		cr.RequesterID,
		cr.Field,
		cr.PreviousValue,
		cr.ProposedValue,
		cr.Reason,
		cr.State,
		cr.CreatedAt,
	).Scan(&out.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating change request")
	}
	return &out, nil
}

func (r *PgChangeRequestRepository) GetByID(ctx context.Context, id int64) (*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	cr, err := scanChangeRequest(tx.QueryRow(ctx, changeRequestByIDQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, changerequest.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return cr, nil
}

func (r *PgChangeRequestRepository) ListPending(ctx context.Context) ([]*changerequest.ChangeRequest, error) {
	return r.list(ctx, changeRequestPendingQuery)
}

func (r *PgChangeRequestRepository) ListPendingByRequesters(ctx context.Context, requesterIDs []int64) ([]*changerequest.ChangeRequest, error) {
	if len(requesterIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, changeRequestPendingByRequestersQuery, requesterIDs)
}

func (r *PgChangeRequestRepository) MarkResolved(ctx context.Context, id int64, state string, approverID int64, comment string, at time.Time) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, changeRequestResolveQuery, id, state, approverID, comment, at)
	if err != nil {
		return false, errors.Wrap(err, "resolving change request")
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Zero rows: either the request is already resolved or it never existed.
	var one int
	err = tx.QueryRow(ctx, changeRequestExistsQuery, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, changerequest.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func (r *PgChangeRequestRepository) list(ctx context.Context, query string, args ...any) ([]*changerequest.ChangeRequest, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing change requests")
	}
	defer rows.Close()

	var out []*changerequest.ChangeRequest
	for rows.Next() {
		cr, err := scanChangeRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cr)
	}
	return out, rows.Err()
}

func scanChangeRequest(row pgx.Row) (*changerequest.ChangeRequest, error) {
	var cr changerequest.ChangeRequest
	err := row.Scan(
		&cr.ID,
		&cr.TaskID,
		&cr.RequesterID,
		&cr.Field,
		&cr.PreviousValue,
		&cr.ProposedValue,
		&cr.Reason,
		&cr.State,
		&cr.ApproverID,
		&cr.ResolutionComment,
		&cr.CreatedAt,
		&cr.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cr, nil
}
