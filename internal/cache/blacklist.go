package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	blacklistKeyPrefix = "blacklist:jti:"

	// MinBlacklistTTL keeps markers for tokens that are already expired long
	// enough to absorb clock skew between replicas.
	MinBlacklistTTL = time.Minute
)

// MarkBlacklisted records jti as revoked until ttl elapses. Callers pass the
// remaining token lifetime; after expiry the token fails validation anyway.
func (c *Cache) MarkBlacklisted(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl < MinBlacklistTTL {
		ttl = MinBlacklistTTL
	}
	if err := c.client.Set(ctx, blacklistKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set blacklist marker failed: %w", err)
	}
	return nil
}

// IsBlacklisted reports whether a revocation marker exists for jti.
// A missing marker does not prove the token is live.
func (c *Cache) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.client.Exists(ctx, blacklistKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists blacklist marker failed: %w", err)
	}
	return n > 0, nil
}
