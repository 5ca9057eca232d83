package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueAndVerify(t *testing.T) {
	mgr := NewJWTManager(testSecret, 15*time.Minute)
	subject := uuid.NewString()

	signed, jti, err := mgr.Issue(subject, "ana@example.com", RoleManager, "Ana")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty jti")
	}

	claims, err := mgr.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != subject {
		t.Errorf("subject = %q, want %q", claims.Subject, subject)
	}
	if claims.Email != "ana@example.com" || claims.Role != RoleManager || claims.Name != "Ana" {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ID != jti {
		t.Errorf("jti = %q, want %q", claims.ID, jti)
	}
}

func TestVerifyExpired(t *testing.T) {
	mgr := NewJWTManager(testSecret, -time.Minute)

	signed, _, err := mgr.Issue(uuid.NewString(), "a@b.c", RoleUser, "A")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := mgr.Verify(signed); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify(expired) = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	mgr := NewJWTManager(testSecret, 15*time.Minute)
	other := NewJWTManager("another-secret-another-secret-xx", 15*time.Minute)

	signed, _, err := other.Issue(uuid.NewString(), "a@b.c", RoleUser, "A")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := mgr.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify(wrong secret) = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	mgr := NewJWTManager(testSecret, 15*time.Minute)
	if _, err := mgr.Verify("not.a.token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify(garbage) = %v, want ErrTokenInvalid", err)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"valid", "Bearer abc123", "abc123", nil},
		{"case-insensitive scheme", "bearer abc123", "abc123", nil},
		{"empty header", "", "", ErrMissingToken},
		{"no scheme", "abc123", "", ErrMalformedHeader},
		{"wrong scheme", "Basic abc123", "", ErrMalformedHeader},
		{"empty token", "Bearer ", "", ErrMalformedHeader},
		{"double space", "Bearer  abc123", "", ErrMalformedHeader},
		{"trailing space", "Bearer abc123 ", "", ErrMalformedHeader},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BearerToken(tc.header)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("token = %q, want %q", got, tc.want)
			}
		})
	}
}
