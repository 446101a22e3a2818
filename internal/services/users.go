// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// UserService manages operator-console accounts. All operations are
// admin-only; operators cannot create or modify users.
type UserService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateUserRequest carries a new console account.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=8,max=200"`
	Role     string `json:"role" validate:"required,oneof=admin operator"`
}

func (s *UserService) Create(ctx context.Context, actor authz.Principal, req CreateUserRequest) (*models.User, error) {
	if err := s.authz.Require(actor, authz.ResUsers, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.UserRole(req.Role),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "user", u.ID, "", nil, u)
	return u, nil
}

func (s *UserService) List(ctx context.Context, actor authz.Principal) ([]models.User, error) {
	if err := s.authz.Require(actor, authz.ResUsers, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Users.List(ctx)
}

func (s *UserService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResUsers, authz.ActWrite); err != nil {
		return err
	}
	u, err := s.repos.Users.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Users.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "user", id, "", u, nil)
	return nil
}

// Bootstrap creates the first admin account when the user table is empty.
// Called from cmd/server at startup; audited as a system action.
func (s *UserService) Bootstrap(ctx context.Context, username, password string) (*models.User, error) {
	existing, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.rec.recordSystem(ctx, models.ActionCreated, "user", u.ID, u)
	return u, nil
}
