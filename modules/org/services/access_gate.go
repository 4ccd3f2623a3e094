package services

import (
	"context"

	"github.com/clarityhq/workplan/modules/org/domain/membership"
)

// AccessGate answers whether a requester may act on a target user. Authority
// comes from the hierarchy alone: self, global admin, or the target holding a
// membership inside the requester's managed subtree. Visibility overrides are
// deliberately not consulted here: an override changes what a user sees,
// never whom they manage.
type AccessGate struct {
	graph       *OrgGraphService
	memberships membership.Repository
	identity    IdentityResolver
}

func NewAccessGate(graph *OrgGraphService, memberships membership.Repository, identity IdentityResolver) *AccessGate {
	return &AccessGate{graph: graph, memberships: memberships, identity: identity}
}

func (g *AccessGate) CanAct(ctx context.Context, requesterID, targetUserID int64) (bool, error) {
	if requesterID == targetUserID {
		return true, nil
	}

	isAdmin, err := g.identity.IsGlobalAdmin(ctx, requesterID)
	if err != nil {
		return false, err
	}
	if isAdmin {
		return true, nil
	}

	subtree, err := g.graph.ExpandManagedSubtree(ctx, requesterID)
	if err != nil {
		return false, err
	}
	if len(subtree) == 0 {
		return false, nil
	}

	targetNodes, err := g.memberships.NodeIDsForUser(ctx, targetUserID)
	if err != nil {
		return false, err
	}
	for _, id := range targetNodes {
		if subtree.Contains(id) {
			return true, nil
		}
	}
	return false, nil
}
