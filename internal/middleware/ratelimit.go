package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/octobees/leads-generator/sitescan/internal/config"
)

// ScanRateLimiter applies a token bucket per caller. Callers are keyed by token
// subject, falling back to the client IP.
func ScanRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	store := newLimiterStore(cfg, time.Now)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := SubjectFromContext(c)
			if key == "" {
				key = "ip:" + c.RealIP()
			}

			if !store.allow(key) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "scan rate limit exceeded"})
			}
			return next(c)
		}
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one bucket per caller. A bucket idle for a full interval has
// refilled, so it is dropped on the next sweep.
type limiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newLimiterStore(cfg config.RateLimitConfig, now func() time.Time) *limiterStore {
	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}
	return &limiterStore{
		limiters:  make(map[string]*limiterEntry),
		every:     rate.Every(perRequest),
		burst:     cfg.Requests,
		idle:      cfg.Interval,
		lastSweep: now(),
		now:       now,
	}
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= s.idle {
		for k, entry := range s.limiters {
			if now.Sub(entry.lastSeen) >= s.idle {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
