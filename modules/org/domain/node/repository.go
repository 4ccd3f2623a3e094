package node

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Node, error)
	// ChildIDs returns ids of active nodes whose parent is in parentIDs.
	ChildIDs(ctx context.Context, parentIDs []int64) ([]int64, error)
}
