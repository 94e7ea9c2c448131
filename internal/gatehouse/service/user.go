package service

import (
	"context"

	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/domain"
	"github.com/gatehouse-auth/gatehouse/internal/gatehouse/store"
)

type UserService struct {
	Store store.Store
}

// GetByID fetches the public projection of a user.
func (s *UserService) GetByID(ctx context.Context, userID int64) (domain.User, error) {
	return s.Store.Users().GetByID(ctx, userID)
}
