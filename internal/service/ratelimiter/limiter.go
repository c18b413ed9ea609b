// Package ratelimiter throttles calls to the embedding provider with a token
// bucket shared through Redis, so every replica draws from the same budget.
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a call of the given cost may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (allowed bool, retryAfter time.Duration, err error)
}

// BucketConfig describes one token bucket.
type BucketConfig struct {
	Capacity   int64
	RefillRate float64 // tokens per second
}

// NewBucketConfigFromPerMinute builds a bucket that allows perMinute calls per minute.
func NewBucketConfigFromPerMinute(perMinute int) BucketConfig {
	if perMinute <= 0 {
		return BucketConfig{}
	}
	return BucketConfig{
		Capacity:   int64(perMinute),
		RefillRate: float64(perMinute) / 60.0,
	}
}

// RedisLuaLimiter evaluates the bucket atomically inside Redis.
// A nil limiter, an unknown key or a Redis failure lets the call through.
type RedisLuaLimiter struct {
	redis   *redis.Client
	script  *redis.Script
	mu      sync.RWMutex
	buckets map[string]BucketConfig
}

// NewRedisLuaLimiter returns nil when rdb is nil.
func NewRedisLuaLimiter(rdb *redis.Client, buckets map[string]BucketConfig) *RedisLuaLimiter {
	if rdb == nil {
		return nil
	}
	if buckets == nil {
		buckets = map[string]BucketConfig{}
	}
	return &RedisLuaLimiter{
		redis:   rdb,
		script:  redis.NewScript(tokenBucketScript),
		buckets: buckets,
	}
}

// Lua numbers come back from Redis as integers, so the wait is returned in milliseconds.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local cost = tonumber(ARGV[4])

local tokens = capacity
local last_refill = now
local data = redis.call("HMGET", key, "tokens", "last_refill")
if data[1] then tokens = tonumber(data[1]) end
if data[2] then last_refill = tonumber(data[2]) end

local delta = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + delta * refill_rate)

local allowed = 0
local wait_ms = 0
if tokens >= cost then
  tokens = tokens - cost
  allowed = 1
elseif refill_rate > 0 then
  wait_ms = math.ceil((cost - tokens) / refill_rate * 1000)
end

redis.call("HSET", key, "tokens", tostring(tokens), "last_refill", tostring(now))
redis.call("EXPIRE", key, math.ceil(capacity / refill_rate) + 60)
return { allowed, wait_ms }
`

// Allow takes cost tokens from the bucket registered under key.
func (l *RedisLuaLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	if l == nil || l.redis == nil {
		return true, 0, nil
	}
	l.mu.RLock()
	cfg, ok := l.buckets[key]
	l.mu.RUnlock()
	if !ok || cfg.Capacity <= 0 || cfg.RefillRate <= 0 {
		return true, 0, nil
	}
	if cost <= 0 {
		cost = 1
	}

	now := float64(time.Now().UnixNano()) / 1e9
	res, err := l.script.Run(ctx, l.redis, []string{"rate:" + key}, cfg.Capacity, cfg.RefillRate, now, cost).Int64Slice()
	if err != nil {
		slog.Error("redis rate limiter script error", slog.String("key", key), slog.Any("error", err))
		return true, 0, fmt.Errorf("op=ratelimiter.Allow: %w", err)
	}
	if len(res) < 2 {
		slog.Error("redis rate limiter unexpected script result", slog.String("key", key), slog.Any("result", res))
		return true, 0, nil
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}

// SetBucketConfig updates or creates the bucket for key. It is safe for concurrent use.
func (l *RedisLuaLimiter) SetBucketConfig(key string, cfg BucketConfig) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets[key] = cfg
}

// Wait blocks until the limiter admits the call or ctx ends. Limiter errors
// let the call through.
func Wait(ctx context.Context, l Limiter, key string, cost int64) error {
	if l == nil {
		return nil
	}
	for {
		allowed, retryAfter, err := l.Allow(ctx, key, cost)
		if err != nil || allowed {
			return nil
		}
		if retryAfter <= 0 {
			retryAfter = 50 * time.Millisecond
		}
		t := time.NewTimer(retryAfter)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("op=ratelimiter.Wait: %w", ctx.Err())
		case <-t.C:
		}
	}
}
