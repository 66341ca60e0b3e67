package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/tradesphere/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries the remaining cooldown so handlers can set Retry-After.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter is a per-user cooldown backed by Redis SETNX keys. A nil Redis
// client disables it.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Acquire claims the cooldown for action. The returned release func drops
// the key again, for callers that want to refund a failed attempt.
func (l *Limiter) Acquire(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (func(), error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return func() {}, nil
	}

	ok, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	if !ok {
		ttl, err := l.rdb.TTL(ctx, key(userID, action)).Result()
		if err != nil || ttl < 0 {
			ttl = window
		}
		return nil, &RateLimitError{
			Message:    fmt.Sprintf("please wait %.0f seconds before trying again", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	release := func() {
		// fresh context: the request one may already be cancelled
		_ = l.rdb.Del(context.Background(), key(userID, action)).Err()
	}
	return release, nil
}
