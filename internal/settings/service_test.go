package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/painai/api/internal/repo"
)

type memoryRepo struct {
	values map[string]string
}

func (m *memoryRepo) GetSetting(_ context.Context, key string) (repo.Setting, error) {
	v, ok := m.values[key]
	if !ok {
		return repo.Setting{}, repo.ErrNotFound
	}
	return repo.Setting{Key: key, Value: v}, nil
}

func (m *memoryRepo) UpsertSetting(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memoryRepo) ListSettings(_ context.Context) ([]repo.Setting, error) {
	out := make([]repo.Setting, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, repo.Setting{Key: k, Value: v})
	}
	return out, nil
}

func TestServiceRoundTrip(t *testing.T) {
	svc := NewService(&memoryRepo{values: map[string]string{}})
	ctx := context.Background()

	if _, err := svc.Get(ctx, KeyDefaultWorkHours); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(unset) = %v, want ErrNotFound", err)
	}

	if err := svc.Set(ctx, KeyDefaultWorkHours, "8"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := svc.Get(ctx, KeyDefaultWorkHours)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "8" {
		t.Errorf("value = %q, want 8", got)
	}

	all, err := svc.All(ctx)
	if err != nil || len(all) != 1 {
		t.Errorf("All = %v, %v", all, err)
	}
}

func TestGetBool(t *testing.T) {
	svc := NewService(&memoryRepo{values: map[string]string{
		KeyAutoApproveAdmins: "true",
		"broken":             "not-a-bool",
	}})
	ctx := context.Background()

	if !svc.GetBool(ctx, KeyAutoApproveAdmins, false) {
		t.Error("expected stored true")
	}
	if svc.GetBool(ctx, "missing", false) {
		t.Error("missing key must fall back to default")
	}
	if !svc.GetBool(ctx, "broken", true) {
		t.Error("unparsable value must fall back to default")
	}
}

func TestGetFloat(t *testing.T) {
	svc := NewService(&memoryRepo{values: map[string]string{
		KeyDefaultWorkHours: "7.5",
		"broken":            "seven",
	}})
	ctx := context.Background()

	if got := svc.GetFloat(ctx, KeyDefaultWorkHours, 8); got != 7.5 {
		t.Errorf("GetFloat = %v, want 7.5", got)
	}
	if got := svc.GetFloat(ctx, "missing", 8); got != 8 {
		t.Errorf("missing key = %v, want default 8", got)
	}
	if got := svc.GetFloat(ctx, "broken", 8); got != 8 {
		t.Errorf("unparsable value = %v, want default 8", got)
	}
}
