package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionDenylist tracks revoked access tokens by their jti claim. Access
// tokens are otherwise stateless, so a forced sign-out only takes effect by
// denylisting the token for its remaining lifetime.
type SessionDenylist struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionDenylist constructs a denylist backed by Redis.
func NewSessionDenylist(client *redis.Client, logger *zap.Logger) *SessionDenylist {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionDenylist{client: client, logger: logger}
}

func (d *SessionDenylist) key(jti string) string {
	return "session:denied:" + jti
}

// Revoke marks a token id as revoked until its natural expiry.
func (d *SessionDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d.client == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	if err := d.client.Set(ctx, d.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("denylist token %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether a token id has been revoked. Lookup failures are
// logged and treated as not revoked so an unavailable Redis cannot lock every
// caller out.
func (d *SessionDenylist) IsRevoked(ctx context.Context, jti string) bool {
	if d.client == nil || jti == "" {
		return false
	}
	n, err := d.client.Exists(ctx, d.key(jti)).Result()
	if err != nil {
		d.logger.Warn("denylist lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}
