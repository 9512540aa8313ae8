package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/turtacn/InsureDoc-Intelligence/pkg/errors"
)

// RateLimitResult is the outcome of one Allow call.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetIn   time.Duration
}

// FixedWindowLimiter counts requests per key in fixed windows using INCR and
// EXPIRE.
type FixedWindowLimiter struct {
	client *Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(client *Client, limit int, window time.Duration) *FixedWindowLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &FixedWindowLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow counts one request for key.  A limit of zero or less allows everything.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (RateLimitResult, error) {
	res := RateLimitResult{Allowed: true, Limit: l.limit, Remaining: l.limit}
	if l.limit <= 0 {
		return res, nil
	}

	bucket := l.now().UnixNano() / int64(l.window)
	k := l.client.Key("ratelimit", key, strconv.FormatInt(bucket, 10))

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return res, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit counter failed")
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return res, errors.Wrap(err, errors.ErrCodeCacheError, "rate limit expiry failed")
		}
	}

	res.ResetIn = time.Duration((bucket+1)*int64(l.window) - l.now().UnixNano())
	res.Remaining = l.limit - int(count)
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	res.Allowed = count <= int64(l.limit)
	return res, nil
}
