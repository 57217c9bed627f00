package generation

import (
	"sync"
	"time"
)

// Default budget for the primary provider: 30 requests per rolling minute.
const (
	DefaultRateLimitWindow = time.Minute
	DefaultRateLimitMax    = 30
)

// RateGate tracks a fixed-window request budget for the primary provider and
// answers whether a new call may proceed. It never blocks and never fails;
// a false return simply means the caller must use the fallback path.
//
// This is a fixed-window counter, not a sliding window: callers can burst up
// to nearly twice the nominal rate right at a window boundary. That is a
// deliberate simplification, kept because the budget exists only to stay
// clear of the upstream quota, not to shape traffic precisely.
//
// The gate is safe for concurrent use within a single process. It is NOT
// shared across processes, so each instance has an independent budget and
// under-counts true upstream usage when horizontally scaled.
type RateGate struct {
	mu          sync.Mutex
	windowStart time.Time
	count       int

	window time.Duration
	max    int

	// now is the clock; replaceable in tests.
	now func() time.Time
}

// NewRateGate creates a gate allowing at most max requests per window.
// Non-positive arguments fall back to the package defaults.
func NewRateGate(max int, window time.Duration) *RateGate {
	if max <= 0 {
		max = DefaultRateLimitMax
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}

	return &RateGate{
		window: window,
		max:    max,
		now:    time.Now,
	}
}

// TryAcquire reports whether a new request fits in the current window,
// counting it if so. When the window has elapsed the counter resets and the
// window start advances to now.
func (g *RateGate) TryAcquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now.Sub(g.windowStart) > g.window {
		g.windowStart = now
		g.count = 0
	}

	if g.count >= g.max {
		return false
	}

	g.count++
	return true
}
