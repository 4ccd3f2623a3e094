package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/org/domain/node"
	"github.com/clarityhq/workplan/pkg/composables"
)

const (
	nodeByIDQuery = `
		SELECT id, parent_id, type, name, active
		FROM org_nodes
		WHERE id = $1`

	// No recursive CTE here on purpose: the tree may contain cycles, so
	// expansion is driven level by level from the service with a visited set.
	nodeChildIDsQuery = `
		SELECT id
		FROM org_nodes
		WHERE parent_id = ANY($1) AND active`
)

type PgNodeRepository struct{}

func NewNodeRepository() node.Repository {
	return &PgNodeRepository{}
}

func (r *PgNodeRepository) GetByID(ctx context.Context, id int64) (node.Node, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return node.Node{}, err
	}
	var n node.Node
	err = tx.QueryRow(ctx, nodeByIDQuery, id).Scan(&n.ID, &n.ParentID, &n.Type, &n.Name, &n.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return node.Node{}, node.ErrNotFound
	}
	return n, err
}

func (r *PgNodeRepository) ChildIDs(ctx context.Context, parentIDs []int64) ([]int64, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, nodeChildIDsQuery, parentIDs)
	if err != nil {
		return nil, errors.Wrap(err, "listing child nodes")
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
