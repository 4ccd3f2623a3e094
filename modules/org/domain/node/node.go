package node

import "errors"

var ErrNotFound = errors.New("org node not found")

const (
	TypeDepartment = "Department"
	TypeTeam       = "Team"
)

// Node is one vertex of the organization tree. ParentID nil means root. The
// parent relation is intended to be acyclic but consumers must never rely on
// that: administrators mutate the tree live and corrupted data has been
// observed, so all traversal is visited-set guarded.
type Node struct {
	ID       int64
	ParentID *int64
	Type     string
	Name     string
	Active   bool
}
