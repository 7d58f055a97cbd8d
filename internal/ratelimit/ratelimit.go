// Package ratelimit implements a Redis-backed token bucket shared by all instances of the service.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLimiterUnavailable is returned when the bucket state cannot be read or written.
var ErrLimiterUnavailable = errors.New("rate limiter unavailable")

// The bucket is refilled lazily on every call, so idle keys cost nothing
// until they expire.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local refill_rate = tonumber(ARGV[2])
local refill_period = tonumber(ARGV[3])
local now = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = now - last_refill
local periods = math.floor(elapsed / refill_period)

if periods > 0 then
	tokens = math.min(capacity, tokens + (periods * refill_rate))
	last_refill = last_refill + (periods * refill_period)
end

local allowed = tokens > 0
if allowed then
	tokens = tokens - 1
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', last_refill)
redis.call('EXPIRE', key, refill_period * 2)

return allowed and 1 or 0
`)

// Config describes the bucket shape.
type Config struct {
	KeyPrefix    string        // Redis key prefix
	Capacity     int           // Maximum tokens in bucket
	RefillRate   int           // Tokens added per period
	RefillPeriod time.Duration // How often to refill tokens
}

// RateLimiter decides whether a caller identified by a key may proceed.
type RateLimiter struct {
	client redis.Scripter
	cfg    Config
	now    func() time.Time
}

// New returns a RateLimiter storing buckets through client.
func New(client redis.Scripter, cfg Config) *RateLimiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "rate_limit:"
	}
	if cfg.RefillPeriod < time.Second {
		cfg.RefillPeriod = time.Second
	}

	return &RateLimiter{
		client: client,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Allow consumes a token from the bucket of key and reports whether one was available.
func (rl *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	const op = "ratelimit.RateLimiter.Allow"

	res, err := tokenBucket.Run(ctx, rl.client, []string{rl.cfg.KeyPrefix + key},
		rl.cfg.Capacity,
		rl.cfg.RefillRate,
		int(rl.cfg.RefillPeriod.Seconds()),
		rl.now().Unix(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrLimiterUnavailable, err)
	}

	return res == 1, nil
}

// connectTimeout bounds the initial connection attempts to Redis.
const connectTimeout = 15 * time.Second

// Connect creates a Redis client and waits until it answers PING.
func Connect(ctx context.Context, opts *redis.Options) (*redis.Client, error) {
	const op = "ratelimit.Connect"

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rdb := redis.NewClient(opts)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		err := rdb.Ping(ctx).Err()
		if err == nil {
			return rdb, nil
		}

		select {
		case <-ctx.Done():
			_ = rdb.Close()
			return nil, fmt.Errorf("%s: failed to ping redis: %w (last error: %v)", op, ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
