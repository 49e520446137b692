package lockout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "votegate:lockout:"

// RedisStore shares lockouts across instances. Counters and locks expire on
// their own, so no sweeper is needed.
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func failuresKey(key string) string { return keyPrefix + key + ":failures" }
func lockKey(key string) string     { return keyPrefix + key + ":locked" }

func (s *RedisStore) RecordFailure(ctx context.Context, key string, _ time.Time, window time.Duration) (int, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failuresKey(key))
		pipe.ExpireNX(ctx, failuresKey(key), window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Lock(ctx context.Context, key string, now, until time.Time) error {
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockKey(key), strconv.FormatInt(until.UnixMilli(), 10), ttl)
		pipe.Del(ctx, failuresKey(key))
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock: %w", err)
	}
	return nil
}

func (s *RedisStore) LockedUntil(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, lockKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read lock: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse lock %q: %w", raw, err)
	}
	until := time.UnixMilli(ms)
	if !now.Before(until) {
		return time.Time{}, false, nil
	}
	return until, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failuresKey(key), lockKey(key)).Err(); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}
