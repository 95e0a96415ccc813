// Package services contains the typed domain services: thin wrappers that
// forward one backend resource's operations through the request pipeline and
// substitute resource-specific error messages where the backend gave none.
package services

import (
	"context"

	"github.com/dmitrijs2005/cidadefoco/internal/client/api"
	"github.com/dmitrijs2005/cidadefoco/internal/client/models"
)

// UserService covers account creation and the admin-only user listing.
// Authentication itself lives in the session package.
type UserService interface {
	Create(ctx context.Context, user models.NewUser) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type userService struct {
	api *api.Client
}

func NewUserService(apiClient *api.Client) UserService {
	return &userService{api: apiClient}
}

func (s *userService) Create(ctx context.Context, user models.NewUser) (*models.User, error) {
	var created models.User
	if err := s.api.PostJSON(ctx, "/auth/register", user, &created); err != nil {
		return nil, api.DefaultMessage(err, "could not create user")
	}
	return &created, nil
}

// List returns every registered user. The backend enforces the admin
// privilege; a non-admin caller gets the normalized backend error.
func (s *userService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.api.GetJSON(ctx, "/users", &users); err != nil {
		return nil, api.DefaultMessage(err, "could not list users")
	}
	return users, nil
}
