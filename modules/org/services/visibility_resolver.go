package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/core/domain/user"
	"github.com/clarityhq/workplan/modules/org/domain/delegation"
	"github.com/clarityhq/workplan/modules/org/domain/membership"
	"github.com/clarityhq/workplan/modules/org/domain/override"
)

// IdentityResolver is the slice of the identity collaborator the org
// services need.
type IdentityResolver interface {
	IsGlobalAdmin(ctx context.Context, userID int64) (bool, error)
	CarnetOf(ctx context.Context, userID int64) (string, error)
}

// UserSet is a set of user ids.
type UserSet map[int64]struct{}

func (s UserSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Decision is the verdict of a single visibility rule for one candidate.
type Decision int

const (
	Abstain Decision = iota
	Include
	Exclude
)

// Rule is one named step of the visibility precedence chain. Rules are
// evaluated in slice order; the first non-Abstain decision wins.
type Rule struct {
	Name     string
	Evaluate func(candidate user.User, env *RuleEnv) Decision
}

// RuleEnv is the precomputed context a rule chain run evaluates against.
type RuleEnv struct {
	RequesterID      int64
	RequesterIsAdmin bool
	Denied           UserSet
	Allowed          UserSet
	Hierarchy        UserSet
}

// VisibilityRules is the fixed precedence order: global admin, explicit DENY,
// explicit ALLOW, hierarchy closure, self. DENY therefore always beats ALLOW
// and hierarchy inclusion, and nothing beats the admin short-circuit.
func VisibilityRules() []Rule {
	return []Rule{
		{
			Name: "global-admin",
			Evaluate: func(_ user.User, env *RuleEnv) Decision {
				if env.RequesterIsAdmin {
					return Include
				}
				return Abstain
			},
		},
		{
			Name: "deny-override",
			Evaluate: func(c user.User, env *RuleEnv) Decision {
				if env.Denied.Contains(c.ID) {
					return Exclude
				}
				return Abstain
			},
		},
		{
			Name: "allow-override",
			Evaluate: func(c user.User, env *RuleEnv) Decision {
				if env.Allowed.Contains(c.ID) {
					return Include
				}
				return Abstain
			},
		},
		{
			Name: "hierarchy",
			Evaluate: func(c user.User, env *RuleEnv) Decision {
				if env.Hierarchy.Contains(c.ID) {
					return Include
				}
				return Abstain
			},
		},
		{
			Name: "self",
			Evaluate: func(c user.User, env *RuleEnv) Decision {
				if c.ID == env.RequesterID {
					return Include
				}
				return Abstain
			},
		},
	}
}

// VisibilityResolver computes the effective set of people a user may see:
// hierarchy closure merged with explicit overrides and delegations, under the
// VisibilityRules precedence.
type VisibilityResolver struct {
	users       user.Repository
	memberships membership.Repository
	overrides   override.Repository
	delegations delegation.Repository
	graph       *OrgGraphService
	identity    IdentityResolver
	rules       []Rule
}

func NewVisibilityResolver(
	users user.Repository,
	memberships membership.Repository,
	overrides override.Repository,
	delegations delegation.Repository,
	graph *OrgGraphService,
	identity IdentityResolver,
) *VisibilityResolver {
	return &VisibilityResolver{
		users:       users,
		memberships: memberships,
		overrides:   overrides,
		delegations: delegations,
		graph:       graph,
		identity:    identity,
		rules:       VisibilityRules(),
	}
}

// EffectiveVisiblePeople returns the ids of every active person the user may
// see. The result is computed fresh on every call; visibility inputs mutate
// concurrently and must not be cached.
func (r *VisibilityResolver) EffectiveVisiblePeople(ctx context.Context, userID int64) (UserSet, error) {
	env, err := r.buildRuleEnv(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates, err := r.users.ListActive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing active people")
	}

	visible := make(UserSet)
	for _, c := range candidates {
		if r.decide(c, env) == Include {
			visible[c.ID] = struct{}{}
		}
	}
	return visible, nil
}

// VisiblePeople is EffectiveVisiblePeople materialized to user records, in
// the repository's order. Read-only surface for reporting and dashboards.
func (r *VisibilityResolver) VisiblePeople(ctx context.Context, userID int64) ([]user.User, error) {
	set, err := r.EffectiveVisiblePeople(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := r.users.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]user.User, 0, len(set))
	for _, c := range candidates {
		if set.Contains(c.ID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *VisibilityResolver) decide(candidate user.User, env *RuleEnv) Decision {
	for _, rule := range r.rules {
		if d := rule.Evaluate(candidate, env); d != Abstain {
			return d
		}
	}
	return Abstain
}

func (r *VisibilityResolver) buildRuleEnv(ctx context.Context, userID int64) (*RuleEnv, error) {
	env := &RuleEnv{
		RequesterID: userID,
		Denied:      make(UserSet),
		Allowed:     make(UserSet),
		Hierarchy:   make(UserSet),
	}

	isAdmin, err := r.identity.IsGlobalAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	env.RequesterIsAdmin = isAdmin
	if isAdmin {
		// No point resolving overrides or hierarchy the admin rule will
		// short-circuit anyway.
		return env, nil
	}

	actorIDs, actorCarnets, err := r.effectiveActors(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, actorID := range actorIDs {
		subtree, err := r.graph.ExpandManagedSubtree(ctx, actorID)
		if err != nil {
			return nil, err
		}
		if len(subtree) == 0 {
			continue
		}
		members, err := r.memberships.UserIDsInNodes(ctx, subtree.IDs())
		if err != nil {
			return nil, err
		}
		for _, id := range members {
			env.Hierarchy[id] = struct{}{}
		}
	}

	if len(actorCarnets) > 0 {
		ovs, err := r.overrides.ListActiveFor(ctx, actorCarnets)
		if err != nil {
			return nil, errors.Wrap(err, "listing access overrides")
		}
		for _, ov := range ovs {
			targets, err := r.overrideTargets(ctx, ov)
			if err != nil {
				return nil, err
			}
			dst := env.Allowed
			if ov.AccessType == override.AccessDeny {
				dst = env.Denied
			}
			for _, id := range targets {
				dst[id] = struct{}{}
			}
		}
	}

	return env, nil
}

// effectiveActors is the requester plus everyone actively delegating their
// visibility to the requester. Users without a carnet mapping act alone.
func (r *VisibilityResolver) effectiveActors(ctx context.Context, userID int64) ([]int64, []string, error) {
	ids := []int64{userID}
	carnet, err := r.identity.CarnetOf(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if carnet == "" {
		return ids, nil, nil
	}

	carnets := []string{carnet}
	delegators, err := r.delegations.ActiveDelegatorCarnets(ctx, carnet)
	if err != nil {
		return nil, nil, errors.Wrap(err, "listing visibility delegations")
	}
	for _, dc := range delegators {
		if dc == "" || dc == carnet {
			continue
		}
		carnets = append(carnets, dc)
		u, err := r.users.GetByCarnet(ctx, dc)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				continue
			}
			return nil, nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, carnets, nil
}

func (r *VisibilityResolver) overrideTargets(ctx context.Context, ov override.Override) ([]int64, error) {
	switch ov.TargetType {
	case override.TargetPerson:
		u, err := r.users.GetByCarnet(ctx, ov.TargetCarnet)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return []int64{u.ID}, nil
	case override.TargetNode:
		nodeIDs := []int64{ov.TargetNodeID}
		if ov.Scope != override.ScopeNodeOnly {
			subtree, err := r.graph.ExpandSubtree(ctx, nodeIDs)
			if err != nil {
				return nil, err
			}
			nodeIDs = subtree.IDs()
		}
		return r.memberships.UserIDsInNodes(ctx, nodeIDs)
	}
	return nil, nil
}
