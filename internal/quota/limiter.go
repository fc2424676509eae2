// Package quota implements the free-tier chat allowance: a fixed window
// counter per identity, kept in an external store
package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultLimit  = 10
	DefaultWindow = time.Hour * 24

	unknownIP = "unknown"
)

var ErrExceeded = errors.New("free usage quota exceeded")

var refusals = promauto.NewCounter(prometheus.CounterOpts{
	Name: "leetgym_quota_refusals_total",
	Help: "Chat requests refused because the free quota was used up",
})

// Store holds the per key counters. Increment must create the key with the
// given ttl when it doesn't exist and must not touch the ttl otherwise
type Store interface {
	Count(ctx context.Context, key string) (int64, error)
	Increment(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

type Limiter struct {
	store  Store
	limit  int64
	window time.Duration
}

func NewLimiter(s Store, limit int64, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}

	return &Limiter{
		store:  s,
		limit:  limit,
		window: window,
	}
}

func (l *Limiter) Limit() int64 {
	return l.limit
}

// Allow consumes one unit of the allowance for key. It returns ErrExceeded
// without consuming anything once the window's allowance is spent
func (l *Limiter) Allow(ctx context.Context, key string) error {
	count, err := l.store.Count(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read usage counter, %w", err)
	}

	if count >= l.limit {
		refusals.Inc()
		return ErrExceeded
	}

	if _, err := l.store.Increment(ctx, key, l.window); err != nil {
		return fmt.Errorf("failed to increment usage counter, %w", err)
	}

	return nil
}

// Key picks the identity a request is billed to: the user when one is known,
// otherwise the first address a proxy reported
func Key(userID, forwardedFor string) string {
	if userID != "" {
		return "usage:user:" + userID
	}

	ip, _, _ := strings.Cut(forwardedFor, ",")
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = unknownIP
	}

	return "usage:ip:" + ip
}
