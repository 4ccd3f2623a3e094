package services

import (
	"context"

	"github.com/clarityhq/workplan/modules/org/domain/membership"
	"github.com/clarityhq/workplan/modules/org/domain/node"
)

// NodeSet is a set of org node ids.
type NodeSet map[int64]struct{}

func (s NodeSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s NodeSet) IDs() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// OrgGraphService exposes cycle-safe subtree expansion over the mutable org
// tree. It holds no state between calls: the tree is edited live by
// administrators, so every expansion reads current data.
type OrgGraphService struct {
	memberships membership.Repository
	nodes       node.Repository
}

func NewOrgGraphService(memberships membership.Repository, nodes node.Repository) *OrgGraphService {
	return &OrgGraphService{memberships: memberships, nodes: nodes}
}

// ExpandManagedSubtree returns every node reachable from the nodes the user
// leads (Leader/Manager/Director membership). Users leading nothing get an
// empty set.
func (s *OrgGraphService) ExpandManagedSubtree(ctx context.Context, userID int64) (NodeSet, error) {
	roots, err := s.memberships.LeadNodeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return NodeSet{}, nil
	}
	return s.ExpandSubtree(ctx, roots)
}

// ManagedSubtreeMembers returns the ids of every user holding a membership
// inside the requester's managed subtree. Empty when the user leads nothing.
func (s *OrgGraphService) ManagedSubtreeMembers(ctx context.Context, userID int64) ([]int64, error) {
	subtree, err := s.ExpandManagedSubtree(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(subtree) == 0 {
		return nil, nil
	}
	return s.memberships.UserIDsInNodes(ctx, subtree.IDs())
}

// ExpandSubtree walks parent→child links breadth-first from roots. Nodes are
// referenced by id only and every id enters the frontier at most once, so the
// walk terminates even when the stored tree contains a cycle or a node that
// is its own parent.
func (s *OrgGraphService) ExpandSubtree(ctx context.Context, roots []int64) (NodeSet, error) {
	visited := make(NodeSet, len(roots))
	frontier := make([]int64, 0, len(roots))
	for _, id := range roots {
		if !visited.Contains(id) {
			visited[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		children, err := s.nodes.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		next := frontier[:0:0]
		for _, id := range children {
			if visited.Contains(id) {
				continue
			}
			visited[id] = struct{}{}
			next = append(next, id)
		}
		frontier = next
	}

	return visited, nil
}
