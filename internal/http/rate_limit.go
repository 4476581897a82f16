package http

import (
	"sync"
	"time"

	"order-metrics/internal/shared/configs"

	"golang.org/x/time/rate"
)

const (
	defaultVisitorTTL = 10 * time.Minute
	cleanupEvery      = 5000
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client IP. Idle buckets are evicted
// opportunistically during lookups.
type rateLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
	lookups  uint64
}

func newRateLimiter(cfg configs.RateLimitConfig, now func() time.Time) *rateLimiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	ttl := time.Duration(cfg.IdleTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultVisitorTTL
	}
	if now == nil {
		now = time.Now
	}
	return &rateLimiter{
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    burst,
		ttl:      ttl,
		now:      now,
		visitors: make(map[string]*visitor),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= cleanupEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	limiter := v.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (rl *rateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}
