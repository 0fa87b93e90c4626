package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Limiter is a fixed-window counter keyed by client. The HTTP host uses it
// to cap how many new dashboard sessions one client may open per window.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	denied  atomic.Int64
}

type window struct {
	start time.Time
	count int
}

// Config holds rate limiter configuration
type Config struct {
	Limit  int
	Period time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Limit:  30,
		Period: time.Minute,
	}
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.Limit <= 0 {
		config.Limit = def.Limit
	}
	if config.Period <= 0 {
		config.Period = def.Period
	}
	return &Limiter{
		clients: make(map[string]*window),
		limit:   config.Limit,
		period:  config.Period,
		now:     time.Now,
	}
}

// Allow records one hit for key and reports whether it fits the window.
func (rl *Limiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.clients[key] = &window{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > rl.limit {
		rl.denied.Add(1)
		return false
	}
	return true
}

// CleanExpired drops windows that have closed. It satisfies cache.Cleaner so
// the limiter can share the session sweeper.
func (rl *Limiter) CleanExpired() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, w := range rl.clients {
		if now.Sub(w.start) >= rl.period {
			delete(rl.clients, key)
			removed++
		}
	}
	return removed
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	Denied      int64
	ClientCount int64
}

// GetMetrics returns current metrics
func (rl *Limiter) GetMetrics() Metrics {
	rl.mu.Lock()
	clients := int64(len(rl.clients))
	rl.mu.Unlock()

	return Metrics{
		Denied:      rl.denied.Load(),
		ClientCount: clients,
	}
}
