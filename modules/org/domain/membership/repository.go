package membership

import "context"

type Repository interface {
	// LeadNodeIDs returns the nodes where the user currently holds a
	// leadership-role membership.
	LeadNodeIDs(ctx context.Context, userID int64) ([]int64, error)
	// NodeIDsForUser returns the nodes of all currently active memberships of
	// the user, any role.
	NodeIDsForUser(ctx context.Context, userID int64) ([]int64, error)
	// UserIDsInNodes returns users holding a currently active membership in
	// any of the given nodes.
	UserIDsInNodes(ctx context.Context, nodeIDs []int64) ([]int64, error)
}
