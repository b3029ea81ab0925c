package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of *redis.Client used by Redis.
type RedisClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

// Redis is a fixed-window limiter shared by every server instance. If Redis
// is unavailable requests are allowed.
type Redis struct {
	rdb    RedisClient
	max    int64
	prefix string
}

var _ Limiter = (*Redis)(nil)

// NewRedis returns a limiter storing counters under prefix.
func NewRedis(rdb RedisClient, max int, prefix string) *Redis {
	return &Redis{rdb: rdb, max: int64(max), prefix: prefix}
}

func (l *Redis) Allow(ctx context.Context, key string) (bool, time.Duration) {
	k := l.prefix + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		slog.WarnContext(ctx, "redis rate limit check failed, allowing request",
			"key", k,
			"error", err,
		)
		return true, 0
	}
	if count == 1 {
		l.expire(ctx, k)
	}
	if count <= l.max {
		return true, 0
	}

	// A key without a TTL (the first EXPIRE failed) would block forever.
	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err == nil && ttl < 0 {
		l.expire(ctx, k)
	}
	if err != nil || ttl <= 0 {
		ttl = Window
	}
	return false, ttl
}

func (l *Redis) expire(ctx context.Context, k string) {
	if err := l.rdb.Expire(ctx, k, Window).Err(); err != nil {
		slog.WarnContext(ctx, "redis rate limit expire failed", "key", k, "error", err)
	}
}

// NewRedisClient parses url (redis://...) and returns a client.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
