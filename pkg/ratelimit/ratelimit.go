package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter defines the interface for rate limiting
type RateLimiter interface {
	// Allow checks if the request is allowed for the given key and limit
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// Limit defines a fixed-window rule: Rate requests per Period
type Limit struct {
	Rate   int
	Period time.Duration
}

// Result represents the result of a rate limit check
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// RedisRateLimiter implements RateLimiter with INCR/PEXPIRE fixed windows
type RedisRateLimiter struct {
	client redis.Cmdable
}

// NewRedisRateLimiter creates a new RedisRateLimiter
func NewRedisRateLimiter(client redis.Cmdable) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow checks if the request is allowed
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, key, limit.Period).Err(); err != nil {
			return nil, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	ttl, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit ttl failed: %w", err)
	}
	if ttl < 0 {
		// key 没有过期时间（例如 PEXPIRE 之前进程退出），重新设置窗口
		if err := r.client.PExpire(ctx, key, limit.Period).Err(); err != nil {
			return nil, fmt.Errorf("rate limit expire failed: %w", err)
		}
		ttl = limit.Period
	}
	return decide(count, ttl, limit), nil
}

func decide(count int64, ttl time.Duration, limit Limit) *Result {
	res := &Result{
		Allowed:    count <= int64(limit.Rate),
		ResetAfter: ttl,
	}
	if remaining := int64(limit.Rate) - count; remaining > 0 {
		res.Remaining = int(remaining)
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res
}
