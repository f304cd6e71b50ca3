package http

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/vovakirdan/chanchat-server/internal/config"
)

// rateLimiter is a per-connection token bucket. The bucket starts full and
// refills cfg.Tokens tokens per cfg.Interval.
type rateLimiter struct {
	limiter *rate.Limiter
}

func newRateLimiter(cfg config.RateLimit) *rateLimiter {
	if cfg.Tokens <= 0 || cfg.Interval <= 0 {
		return nil
	}
	refill := rate.Every(cfg.Interval / time.Duration(cfg.Tokens))
	return &rateLimiter{limiter: rate.NewLimiter(refill, cfg.Tokens)}
}

// allow consumes one token. A nil limiter never refuses.
func (r *rateLimiter) allow() bool {
	if r == nil {
		return true
	}
	return r.limiter.Allow()
}
