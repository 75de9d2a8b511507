package connection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Correlator ties an authorization redirect to the eventual callback. The
// issued token travels as the OAuth "state" query parameter and is the sole
// correlation mechanism: resolving it yields the user identity the callback
// belongs to.
type Correlator interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, state string) (string, error)
}

// IdentityCorrelator passes the raw user id through as the state token.
// This matches the historical behavior of the service: state is not a CSRF
// nonce, it IS the user identity. Kept as the default so existing frontends
// keep working; RedisCorrelator is the opaque replacement.
type IdentityCorrelator struct{}

func (IdentityCorrelator) Issue(_ context.Context, userID string) (string, error) {
	return userID, nil
}

func (IdentityCorrelator) Resolve(_ context.Context, state string) (string, error) {
	if state == "" {
		return "", ErrBadState
	}
	return state, nil
}

// RedisCorrelator issues opaque single-use state tokens mapped to the user
// id in Redis with a short TTL. Resolution consumes the token.
type RedisCorrelator struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCorrelator(rdb redis.Cmdable, ttl time.Duration) *RedisCorrelator {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCorrelator{rdb: rdb, ttl: ttl}
}

func stateKey(token string) string {
	return "oauth_state:" + token
}

func (c *RedisCorrelator) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := c.rdb.Set(ctx, stateKey(token), userID, c.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing state token: %w", err)
	}
	return token, nil
}

func (c *RedisCorrelator) Resolve(ctx context.Context, state string) (string, error) {
	userID, err := c.rdb.GetDel(ctx, stateKey(state)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrBadState
		}
		return "", fmt.Errorf("resolving state token: %w", err)
	}
	return userID, nil
}
