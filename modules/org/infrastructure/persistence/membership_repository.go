package persistence

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/org/domain/membership"
	"github.com/clarityhq/workplan/pkg/composables"
)

// A membership is active when its window contains now(); closed memberships
// keep their rows with end_date set.
const (
	membershipActiveWindow = `m.start_date <= now() AND (m.end_date IS NULL OR m.end_date >= now())`

	membershipLeadNodesQuery = `
		SELECT DISTINCT m.node_id
		FROM org_memberships m
		WHERE m.user_id = $1 AND m.role = ANY($2) AND ` + membershipActiveWindow

	membershipNodesForUserQuery = `
		SELECT DISTINCT m.node_id
		FROM org_memberships m
		WHERE m.user_id = $1 AND ` + membershipActiveWindow

	membershipUsersInNodesQuery = `
		SELECT DISTINCT m.user_id
		FROM org_memberships m
		WHERE m.node_id = ANY($1) AND ` + membershipActiveWindow
)

type PgMembershipRepository struct{}

func NewMembershipRepository() membership.Repository {
	return &PgMembershipRepository{}
}

func (r *PgMembershipRepository) LeadNodeIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.queryIDs(ctx, membershipLeadNodesQuery, userID, membership.LeadershipRoles)
}

func (r *PgMembershipRepository) NodeIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return r.queryIDs(ctx, membershipNodesForUserQuery, userID)
}

func (r *PgMembershipRepository) UserIDsInNodes(ctx context.Context, nodeIDs []int64) ([]int64, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}
	return r.queryIDs(ctx, membershipUsersInNodesQuery, nodeIDs)
}

func (r *PgMembershipRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying memberships")
	}
	defer rows.Close()
	return scanIDs(rows)
}
