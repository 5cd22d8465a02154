package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const throttleKeyPrefix = "teamboard:throttle:"

// RedisThrottle is a Throttle shared across instances through Redis.
// Each identifier is a counter key whose TTL is set on the first failure.
type RedisThrottle struct {
	client      *redis.Client
	maxFailures int
	window      time.Duration
}

// NewRedisThrottle creates a Redis-backed throttle. Non-positive limits use the defaults.
func NewRedisThrottle(client *redis.Client, maxFailures int, window time.Duration) *RedisThrottle {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &RedisThrottle{
		client:      client,
		maxFailures: maxFailures,
		window:      window,
	}
}

func (t *RedisThrottle) key(identifier string) string {
	return throttleKeyPrefix + NormalizeIdentifier(identifier)
}

// RecordFailure increments the counter, starting the window on the first failure
func (t *RedisThrottle) RecordFailure(ctx context.Context, identifier string) error {
	key := t.key(identifier)

	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if count == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return fmt.Errorf("failed to set throttle window: %w", err)
		}
	}
	return nil
}

// IsThrottled reports whether the counter has reached the limit
func (t *RedisThrottle) IsThrottled(ctx context.Context, identifier string) (bool, error) {
	val, err := t.client.Get(ctx, t.key(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read throttle state: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return false, fmt.Errorf("invalid throttle counter %q: %w", val, err)
	}
	return count >= t.maxFailures, nil
}

// Reset deletes the counter
func (t *RedisThrottle) Reset(ctx context.Context, identifier string) error {
	if err := t.client.Del(ctx, t.key(identifier)).Err(); err != nil {
		return fmt.Errorf("failed to reset throttle: %w", err)
	}
	return nil
}
