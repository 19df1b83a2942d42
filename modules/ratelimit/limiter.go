// Package ratelimit throttles the HTTP API per client with a Redis sliding
// window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is a request budget over a sliding window.
type Rule struct {
	Requests int
	Window   time.Duration
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// slidingWindowScript trims entries older than the window, then records the
// request if the budget allows it. Returns {allowed, remaining, retry_ms}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local seq_key = KEYS[2]
local now_ms = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
local used = redis.call('ZCARD', key)

if used >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local retry_ms = 0
	if #oldest >= 2 then
		retry_ms = tonumber(oldest[2]) + window_ms - now_ms
	end
	return {0, 0, retry_ms}
end

local seq = redis.call('INCR', seq_key)
redis.call('ZADD', key, now_ms, now_ms .. '-' .. seq)
redis.call('PEXPIRE', key, window_ms)
redis.call('PEXPIRE', seq_key, window_ms)
return {1, limit - used - 1, 0}
`)

// Limiter applies one Rule to keys stored under a common prefix.
type Limiter struct {
	client *redis.Client
	rule   Rule
	prefix string
	now    func() time.Time
}

// NewLimiter creates a sliding-window limiter.
func NewLimiter(client *redis.Client, rule Rule, prefix string) *Limiter {
	return &Limiter{
		client: client,
		rule:   rule,
		prefix: prefix,
		now:    time.Now,
	}
}

// Rule returns the limiter's budget.
func (l *Limiter) Rule() Rule {
	return l.rule
}

// Allow records a request for key and reports whether it fits the budget.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	redisKey := l.prefix + key

	values, err := slidingWindowScript.Run(ctx, l.client,
		[]string{redisKey, redisKey + ":seq"},
		now.UnixMilli(),
		l.rule.Window.Milliseconds(),
		l.rule.Requests,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(values) != 3 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values", len(values))
	}

	d := Decision{
		Allowed:   values[0] == 1,
		Limit:     l.rule.Requests,
		Remaining: int(values[1]),
		ResetAt:   now.Add(l.rule.Window),
	}
	if !d.Allowed && values[2] > 0 {
		d.RetryAfter = time.Duration(values[2]) * time.Millisecond
	}
	return d, nil
}
