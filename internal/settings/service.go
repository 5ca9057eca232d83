// Package settings exposes persisted application settings behind an injected
// repository, so configuration is shared across instances instead of living
// in a process-wide mutable global.
package settings

import (
	"context"
	"errors"
	"strconv"

	"github.com/painai/api/internal/repo"
)

// ErrNotFound is returned when a setting key has no value.
var ErrNotFound = errors.New("setting not found")

// Well-known setting keys.
const (
	KeyDefaultWorkHours  = "timesheet.default_work_hours"
	KeyAutoApproveAdmins = "timesheet.auto_approve_admins"
)

// Repository is the persistence boundary for settings.
type Repository interface {
	GetSetting(ctx context.Context, key string) (repo.Setting, error)
	UpsertSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) ([]repo.Setting, error)
}

// Service reads and writes settings.
type Service struct {
	repo Repository
}

// NewService creates the settings service.
func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Get returns the raw value for a key.
func (s *Service) Get(ctx context.Context, key string) (string, error) {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return setting.Value, nil
}

// GetBool returns a boolean setting, or def when unset or unparsable.
func (s *Service) GetBool(ctx context.Context, key string, def bool) bool {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

// GetFloat returns a numeric setting, or def when unset or unparsable.
func (s *Service) GetFloat(ctx context.Context, key string, def float64) float64 {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return val
}

// Set writes a setting.
func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.repo.UpsertSetting(ctx, key, value)
}

// All lists every setting.
func (s *Service) All(ctx context.Context) ([]repo.Setting, error) {
	return s.repo.ListSettings(ctx)
}
