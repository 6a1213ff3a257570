package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "login_rl"

// Redis is the [Limiter] backend for multi-instance deployments. It keeps
// an attempt counter and a blocked flag per identity, both with server-side
// expiry, and relies on Redis's atomic INCR for cross-process interleaving.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed limiter over an existing client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// NewRedisClient dials a Redis server for use with [NewRedis].
func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
}

func attemptsKey(key string) string {
	return redisPrefix + ":" + key + ":attempts"
}

func blockedKey(key string) string {
	return redisPrefix + ":" + key + ":blocked"
}

// IsLimited reports whether the identity's blocked flag is set. The now
// parameter is unused: expiry is enforced server-side by Redis TTLs.
func (r *Redis) IsLimited(ctx context.Context, key string, now time.Time) (bool, error) {
	n, err := r.client.Exists(ctx, blockedKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RecordFailure increments the identity's attempt counter, starting the
// window TTL on the first attempt. Crossing [MaxAttempts] sets the blocked
// flag for [BlockDuration] and drops the counter. Already-blocked
// identities are not tracked further.
func (r *Redis) RecordFailure(ctx context.Context, key string, now time.Time) error {
	blocked, err := r.IsLimited(ctx, key, now)
	if err != nil {
		return err
	}
	if blocked {
		return nil
	}

	count, err := r.client.Incr(ctx, attemptsKey(key)).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, attemptsKey(key), Window).Err(); err != nil {
			return err
		}
	}

	if count >= MaxAttempts {
		if err := r.client.Set(ctx, blockedKey(key), "1", BlockDuration).Err(); err != nil {
			return err
		}
		if err := r.client.Del(ctx, attemptsKey(key)).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes both the attempt counter and the blocked flag.
func (r *Redis) Clear(ctx context.Context, key string) error {
	return r.client.Del(ctx, attemptsKey(key), blockedKey(key)).Err()
}
