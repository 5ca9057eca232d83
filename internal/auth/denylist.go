package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist marks access tokens as revoked before their natural expiry.
// Entries live in the same Redis instance as refresh-token state so logout
// survives process restarts and is visible to every API instance.
type Denylist struct {
	redis redis.Cmdable
}

// NewDenylist creates a denylist over the given Redis client.
func NewDenylist(client redis.Cmdable) *Denylist {
	return &Denylist{redis: client}
}

func denylistKey(jti string) string {
	return fmt.Sprintf("denylist:%s", jti)
}

// Revoke records a token id until expiresAt.
func (d *Denylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return d.redis.Set(ctx, denylistKey(jti), "revoked", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := d.redis.Get(ctx, denylistKey(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
