package persistence

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/org/domain/override"
	"github.com/clarityhq/workplan/pkg/composables"
)

const overrideListActiveQuery = `
	SELECT
		o.id,
		o.granter_carnet,
		o.receiver_carnet,
		o.target_type,
		COALESCE(o.target_carnet, ''),
		COALESCE(o.target_node_id, 0),
		o.access_type,
		o.scope,
		COALESCE(o.reason, ''),
		o.active,
		o.end_date
	FROM access_overrides o
	WHERE o.receiver_carnet = ANY($1)
	  AND o.active
	  AND (o.end_date IS NULL OR o.end_date >= now())`

type PgOverrideRepository struct{}

func NewOverrideRepository() override.Repository {
	return &PgOverrideRepository{}
}

func (r *PgOverrideRepository) ListActiveFor(ctx context.Context, receiverCarnets []string) ([]override.Override, error) {
	if len(receiverCarnets) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, overrideListActiveQuery, receiverCarnets)
	if err != nil {
		return nil, errors.Wrap(err, "listing access overrides")
	}
	defer rows.Close()

	var out []override.Override
	for rows.Next() {
		var o override.Override
		if err := rows.Scan(
			&o.ID,
			&o.GranterCarnet,
			&o.ReceiverCarnet,
			&o.TargetType,
			&o.TargetCarnet,
			&o.TargetNodeID,
			&o.AccessType,
			&o.Scope,
			&o.Reason,
			&o.Active,
			&o.EndDate,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
