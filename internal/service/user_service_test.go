package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/painai/api/internal/auth"
	"github.com/painai/api/internal/repo"
)

type stubUserRepo struct {
	users map[uuid.UUID]repo.User
	logs  []string
}

func newStubUserRepo(users ...repo.User) *stubUserRepo {
	s := &stubUserRepo{users: map[uuid.UUID]repo.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (repo.User, error) {
	u, ok := s.users[id]
	if !ok {
		return repo.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetUserByEmail(_ context.Context, email string) (repo.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repo.User{}, repo.ErrNotFound
}

func (s *stubUserRepo) ListUsers(_ context.Context) ([]repo.User, error) {
	out := make([]repo.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUserRepo) UpdateUserProfile(_ context.Context, id uuid.UUID, name, email string) error {
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Name = name
	u.Email = email
	s.users[id] = u
	return nil
}

func (s *stubUserRepo) UpdateUserRole(_ context.Context, id uuid.UUID, role string) error {
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

func (s *stubUserRepo) SetUserActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.IsActive = active
	s.users[id] = u
	return nil
}

func (s *stubUserRepo) DeleteRefreshTokensByUser(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (s *stubUserRepo) InsertActivityLog(_ context.Context, _ uuid.UUID, _ *uuid.UUID, action string, _ *string) error {
	s.logs = append(s.logs, action)
	return nil
}

func TestUpdateProfile(t *testing.T) {
	ana := repo.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: auth.RoleUser, IsActive: true}
	svc := NewUserService(newStubUserRepo(ana))

	updated, err := svc.UpdateProfile(context.Background(), ana.ID, "Ana Lima", "Ana.Lima@Example.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Ana Lima" {
		t.Errorf("name = %q, want Ana Lima", updated.Name)
	}
	if updated.Email != "ana.lima@example.com" {
		t.Errorf("email = %q, want lowercased ana.lima@example.com", updated.Email)
	}
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	ana := repo.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: auth.RoleUser, IsActive: true}
	bea := repo.User{ID: uuid.New(), Email: "bea@example.com", Name: "Bea", Role: auth.RoleUser, IsActive: true}
	r := newStubUserRepo(ana, bea)
	svc := NewUserService(r)

	if _, err := svc.UpdateProfile(context.Background(), ana.ID, "Ana", "Bea@Example.com"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("UpdateProfile(taken email) = %v, want ErrEmailTaken", err)
	}
	if got := r.users[ana.ID].Email; got != "ana@example.com" {
		t.Errorf("email was written despite the conflict: %q", got)
	}
}

func TestUpdateProfileKeepsOwnEmail(t *testing.T) {
	ana := repo.User{ID: uuid.New(), Email: "ana@example.com", Name: "Ana", Role: auth.RoleUser, IsActive: true}
	svc := NewUserService(newStubUserRepo(ana))

	updated, err := svc.UpdateProfile(context.Background(), ana.ID, "Ana Lima", "ana@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile(own email) = %v", err)
	}
	if updated.Name != "Ana Lima" {
		t.Errorf("name = %q, want Ana Lima", updated.Name)
	}
}
