package persistence

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/org/domain/delegation"
	"github.com/clarityhq/workplan/pkg/composables"
)

const delegationActiveDelegatorsQuery = `
	SELECT DISTINCT d.delegator_carnet
	FROM visibility_delegations d
	WHERE d.delegate_carnet = $1
	  AND d.active
	  AND (d.end_date IS NULL OR d.end_date >= now())`

type PgDelegationRepository struct{}

func NewDelegationRepository() delegation.Repository {
	return &PgDelegationRepository{}
}

func (r *PgDelegationRepository) ActiveDelegatorCarnets(ctx context.Context, delegateCarnet string) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, delegationActiveDelegatorsQuery, delegateCarnet)
	if err != nil {
		return nil, errors.Wrap(err, "listing visibility delegations")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var carnet string
		if err := rows.Scan(&carnet); err != nil {
			return nil, err
		}
		out = append(out, carnet)
	}
	return out, rows.Err()
}
