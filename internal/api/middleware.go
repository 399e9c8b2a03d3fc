package api

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewired-gh/rentscore/internal/logger"
	"golang.org/x/time/rate"
)

// RequestLogger logs HTTP requests with timing.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("%s %s %d %s %s", c.Request.Method, path, c.Writer.Status(), time.Since(start), c.ClientIP())
	}
}

// minLimiterIdle is the shortest time a client's limiter is kept after its last request.
const minLimiterIdle = 10 * time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// IPRateLimiter manages per-IP rate limiters. Limiters idle for longer than
// their bucket takes to refill are dropped, since a new one behaves the same.
type IPRateLimiter struct {
	limiters  sync.Map
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep atomic.Int64
	now       func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	idle := minLimiterIdle
	if r > 0 && r != rate.Inf {
		if refill := time.Duration(float64(burst) / float64(r) * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &IPRateLimiter{rate: r, burst: burst, idleTTL: idle, now: time.Now}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := i.now()
	v, _ := i.limiters.LoadOrStore(ip, &ipLimiter{limiter: rate.NewLimiter(i.rate, i.burst)})
	l := v.(*ipLimiter)
	l.lastSeen.Store(now.UnixNano())

	i.maybeSweep(now)
	return l.limiter
}

// maybeSweep evicts idle limiters at most once per idle period.
func (i *IPRateLimiter) maybeSweep(now time.Time) {
	last := i.lastSweep.Load()
	if now.UnixNano()-last < int64(i.idleTTL) {
		return
	}
	if !i.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	if removed := i.evictIdle(now); removed > 0 {
		logger.Debug("Evicted %d idle rate limiters", removed)
	}
}

func (i *IPRateLimiter) evictIdle(now time.Time) int {
	cutoff := now.Add(-i.idleTTL).UnixNano()
	removed := 0
	i.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).lastSeen.Load() < cutoff {
			i.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// tracked returns the number of clients with a live limiter.
func (i *IPRateLimiter) tracked() int {
	n := 0
	i.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !i.getLimiter(ip).Allow() {
			logger.Warn("Rate limit exceeded for %s on %s", ip, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
