package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// visitors keeps one token bucket per client IP. Buckets unused for longer
// than the configured TTL are dropped by the cleanup loop
type visitors struct {
	mu   sync.Mutex
	byIP map[string]*visitor
	cfg  RateLimiterConfig
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, exists := v.byIP[ip]
	if !exists {
		limiter := rate.NewLimiter(rate.Limit(v.cfg.RequestsPerSecond), v.cfg.Burst)
		v.byIP[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	vis.lastSeen = time.Now()
	return vis.limiter
}

func (v *visitors) cleanup() {
	ticker := time.NewTicker(v.cfg.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		v.mu.Lock()
		for ip, vis := range v.byIP {
			if time.Since(vis.lastSeen) > v.cfg.TTL {
				delete(v.byIP, ip)
			}
		}
		v.mu.Unlock()
	}
}

// RateLimiterMiddleware protects every route from request floods. This is
// unrelated to the daily chat quota. A non-positive RequestsPerSecond disables it
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.RequestsPerSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	if config.Burst < config.RequestsPerSecond {
		config.Burst = config.RequestsPerSecond
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	v := &visitors{byIP: make(map[string]*visitor), cfg: config}
	go v.cleanup()

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
