package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrRefreshInvalid is returned when a refresh token is unknown, revoked or expired.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrUserInactive is returned when the token owner has been deactivated.
	ErrUserInactive = errors.New("user inactive")
)

// GenerateRefreshToken creates a secure random token and its persistable hash.
// The raw value is opaque: it carries no claims and is only ever looked up by hash.
func GenerateRefreshToken() (raw string, hashed string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = base64.RawURLEncoding.EncodeToString(buf)
	hashed = HashRefreshToken(raw)
	return raw, hashed, nil
}

// HashRefreshToken produces a base64 SHA-256 hash.
func HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RefreshRedisKey builds the key holding a refresh token's session state.
func RefreshRedisKey(hash string) string {
	return fmt.Sprintf("refresh:%s", hash)
}
