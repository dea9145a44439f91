package http

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sm8ta/webike_rental_service/internal/config"
	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

type clientBucket struct {
	lim      *rate.Limiter
	lastSeen atomic.Int64
}

// rateLimiter keeps one token bucket per client IP. Buckets idle for longer
// than the configured TTL are dropped by a sweep that runs at most once per TTL.
type rateLimiter struct {
	limiters  sync.Map
	cfg       *config.RateLimit
	now       func() time.Time
	lastSweep atomic.Int64
}

func newRateLimiter(cfg *config.RateLimit) *rateLimiter {
	l := &rateLimiter{
		cfg: cfg,
		now: time.Now,
	}
	l.lastSweep.Store(l.now().UnixNano())
	return l
}

func (l *rateLimiter) idleTTL() time.Duration {
	if l.cfg.IdleTTL > 0 {
		return l.cfg.IdleTTL
	}
	return defaultIdleTTL
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	now := l.now().UnixNano()
	if v, ok := l.limiters.Load(key); ok {
		if b, ok := v.(*clientBucket); ok {
			b.lastSeen.Store(now)
			return b.lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	b := &clientBucket{lim: rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)}
	b.lastSeen.Store(now)
	actual, loaded := l.limiters.LoadOrStore(key, b)
	if loaded {
		if existing, ok := actual.(*clientBucket); ok {
			existing.lastSeen.Store(now)
			return existing.lim
		}
	}
	return b.lim
}

// maybeSweep runs sweep when a full TTL has passed since the previous one.
// Only the caller that wins the swap does the work.
func (l *rateLimiter) maybeSweep() {
	now := l.now()
	last := l.lastSweep.Load()
	if now.Sub(time.Unix(0, last)) < l.idleTTL() {
		return
	}
	if !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	l.sweep(now.Add(-l.idleTTL()))
}

// sweep drops every bucket not used since cutoff and reports how many were dropped.
func (l *rateLimiter) sweep(cutoff time.Time) int {
	dropped := 0
	l.limiters.Range(func(key, value interface{}) bool {
		b, ok := value.(*clientBucket)
		if !ok || b.lastSeen.Load() < cutoff.UnixNano() {
			l.limiters.Delete(key)
			dropped++
		}
		return true
	})
	return dropped
}

func (l *rateLimiter) size() int {
	n := 0
	l.limiters.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (l *rateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.cfg.RPS <= 0 {
			c.Next()
			return
		}
		allowed := l.getLimiter(c.ClientIP()).Allow()
		l.maybeSweep()
		if !allowed {
			newErrorResponse(c, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
