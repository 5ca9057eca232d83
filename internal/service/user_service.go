package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/painai/api/internal/repo"
)

type userRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (repo.User, error)
	GetUserByEmail(ctx context.Context, email string) (repo.User, error)
	ListUsers(ctx context.Context) ([]repo.User, error)
	UpdateUserProfile(ctx context.Context, id uuid.UUID, name, email string) error
	UpdateUserRole(ctx context.Context, id uuid.UUID, role string) error
	SetUserActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteRefreshTokensByUser(ctx context.Context, userID uuid.UUID) error
	InsertActivityLog(ctx context.Context, id uuid.UUID, userID *uuid.UUID, action string, detail *string) error
}

// UserService handles account administration.
type UserService struct {
	repo userRepository
}

// NewUserService creates the service.
func NewUserService(r userRepository) *UserService {
	return &UserService{repo: r}
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]repo.User, error) {
	return s.repo.ListUsers(ctx)
}

// Get loads one account.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (repo.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile changes name and e-mail. The new e-mail must not belong to a
// different account.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name, email string) (repo.User, error) {
	email = strings.ToLower(email)

	if existing, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		if existing.ID != id {
			return repo.User{}, ErrEmailTaken
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return repo.User{}, err
	}

	if err := s.repo.UpdateUserProfile(ctx, id, name, email); err != nil {
		return repo.User{}, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// UpdateRole changes an account's role.
func (s *UserService) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role string) (repo.User, error) {
	if err := s.repo.UpdateUserRole(ctx, id, role); err != nil {
		return repo.User{}, err
	}
	detail := "role=" + role
	s.log(ctx, &actorID, "user.role_changed", &detail)
	return s.repo.GetUserByID(ctx, id)
}

// Deactivate disables an account and revokes all of its sessions. Accounts
// are never physically deleted.
func (s *UserService) Deactivate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.SetUserActive(ctx, id, false); err != nil {
		return err
	}
	if err := s.repo.DeleteRefreshTokensByUser(ctx, id); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	detail := "user=" + id.String()
	s.log(ctx, &actorID, "user.deactivated", &detail)
	return nil
}

// Activate re-enables an account.
func (s *UserService) Activate(ctx context.Context, actorID, id uuid.UUID) error {
	if err := s.repo.SetUserActive(ctx, id, true); err != nil {
		return err
	}
	detail := "user=" + id.String()
	s.log(ctx, &actorID, "user.activated", &detail)
	return nil
}

func (s *UserService) log(ctx context.Context, userID *uuid.UUID, action string, detail *string) {
	if err := s.repo.InsertActivityLog(ctx, uuid.New(), userID, action, detail); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("activity log write failed")
	}
}
