package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces rate limit counters in Redis.
const DefaultKeyPrefix = "ratelimit"

// RedisLimiter is a fixed-window counter shared by every instance pointing at
// the same Redis.
type RedisLimiter struct {
	client *redis.Client
	policy Policy
	prefix string
	now    func() time.Time
}

// NewRedisClient parses url and verifies the server answers PING.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisLimiter creates a limiter enforcing p with counters in client.
func NewRedisLimiter(client *redis.Client, p Policy, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisLimiter{client: client, policy: p, prefix: prefix, now: time.Now}
}

// Policy implements Limiter.
func (l *RedisLimiter) Policy() Policy { return l.policy }

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	windowStart := now.Truncate(l.policy.Window)
	counterKey := fmt.Sprintf("%s:%s:%s:%d", l.prefix, l.policy.Name, key, windowStart.Unix())

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, counterKey)
	pipe.PExpire(ctx, counterKey, l.policy.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit counter %s: %w", counterKey, err)
	}

	return windowDecision(l.policy, incr.Val(), windowStart.Add(l.policy.Window).Sub(now)), nil
}

// windowDecision turns a fixed-window count into a Decision.
func windowDecision(p Policy, count int64, untilReset time.Duration) Decision {
	d := Decision{Limit: p.Limit}
	if count > int64(p.Limit) {
		d.RetryAfter = untilReset
		return d
	}
	d.Allowed = true
	d.Remaining = p.Limit - int(count)
	return d
}
