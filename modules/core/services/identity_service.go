package services

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clarityhq/workplan/modules/core/domain/user"
)

// IdentityService is the single place that knows which global roles count as
// administrator. Everything else asks IsGlobalAdmin instead of comparing role
// names.
type IdentityService struct {
	users      user.Repository
	adminRoles map[string]struct{}
}

func NewIdentityService(users user.Repository, adminRoles map[string]struct{}) *IdentityService {
	return &IdentityService{users: users, adminRoles: adminRoles}
}

func (s *IdentityService) GetByID(ctx context.Context, id int64) (user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *IdentityService) GetByCarnet(ctx context.Context, carnet string) (user.User, error) {
	return s.users.GetByCarnet(ctx, carnet)
}

func (s *IdentityService) IsGlobalAdmin(ctx context.Context, userID int64) (bool, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	_, ok := s.adminRoles[u.GlobalRole]
	return ok, nil
}

// CarnetOf resolves the override/delegation identity key of a user. Users
// without a carnet mapping return "".
func (s *IdentityService) CarnetOf(ctx context.Context, userID int64) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return u.Carnet, nil
}
