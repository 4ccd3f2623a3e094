package services

import (
	"context"
	"time"

	"github.com/clarityhq/workplan/modules/core/domain/user"
	"github.com/clarityhq/workplan/modules/org/domain/delegation"
	"github.com/clarityhq/workplan/modules/org/domain/membership"
	"github.com/clarityhq/workplan/modules/org/domain/node"
	"github.com/clarityhq/workplan/modules/org/domain/override"
)

// In-memory repository fakes shared by the org service tests.

type fakeNodes struct {
	nodes []node.Node
}

func (f *fakeNodes) GetByID(_ context.Context, id int64) (node.Node, error) {
	for _, n := range f.nodes {
		if n.ID == id {
			return n, nil
		}
	}
	return node.Node{}, node.ErrNotFound
}

func (f *fakeNodes) ChildIDs(_ context.Context, parentIDs []int64) ([]int64, error) {
	parents := make(map[int64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}
	var out []int64
	for _, n := range f.nodes {
		if !n.Active || n.ParentID == nil {
			continue
		}
		if _, ok := parents[*n.ParentID]; ok {
			out = append(out, n.ID)
		}
	}
	return out, nil
}

type fakeMemberships struct {
	rows []membership.Membership
}

func (f *fakeMemberships) LeadNodeIDs(_ context.Context, userID int64) ([]int64, error) {
	now := time.Now()
	var out []int64
	for _, m := range f.rows {
		if m.UserID == userID && m.IsLeadership() && m.ActiveAt(now) {
			out = append(out, m.NodeID)
		}
	}
	return out, nil
}

func (f *fakeMemberships) NodeIDsForUser(_ context.Context, userID int64) ([]int64, error) {
	now := time.Now()
	var out []int64
	for _, m := range f.rows {
		if m.UserID == userID && m.ActiveAt(now) {
			out = append(out, m.NodeID)
		}
	}
	return out, nil
}

func (f *fakeMemberships) UserIDsInNodes(_ context.Context, nodeIDs []int64) ([]int64, error) {
	now := time.Now()
	want := make(map[int64]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		want[id] = struct{}{}
	}
	seen := make(map[int64]struct{})
	var out []int64
	for _, m := range f.rows {
		if !m.ActiveAt(now) {
			continue
		}
		if _, ok := want[m.NodeID]; !ok {
			continue
		}
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		out = append(out, m.UserID)
	}
	return out, nil
}

type fakeUsers struct {
	users []user.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) GetByCarnet(_ context.Context, carnet string) (user.User, error) {
	for _, u := range f.users {
		if u.Carnet == carnet {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsers) ListActive(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeOverrides struct {
	rows []override.Override
}

func (f *fakeOverrides) ListActiveFor(_ context.Context, receiverCarnets []string) ([]override.Override, error) {
	now := time.Now()
	want := make(map[string]struct{}, len(receiverCarnets))
	for _, c := range receiverCarnets {
		want[c] = struct{}{}
	}
	var out []override.Override
	for _, o := range f.rows {
		if !o.ActiveAt(now) {
			continue
		}
		if _, ok := want[o.ReceiverCarnet]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeDelegations struct {
	rows []delegation.Delegation
}

func (f *fakeDelegations) ActiveDelegatorCarnets(_ context.Context, delegateCarnet string) ([]string, error) {
	now := time.Now()
	var out []string
	for _, d := range f.rows {
		if d.DelegateCarnet == delegateCarnet && d.ActiveAt(now) {
			out = append(out, d.DelegatorCarnet)
		}
	}
	return out, nil
}

type fakeIdentity struct {
	admins  map[int64]bool
	carnets map[int64]string
}

func (f *fakeIdentity) IsGlobalAdmin(_ context.Context, userID int64) (bool, error) {
	return f.admins[userID], nil
}

func (f *fakeIdentity) CarnetOf(_ context.Context, userID int64) (string, error) {
	return f.carnets[userID], nil
}

func ptrInt64(v int64) *int64 { return &v }
