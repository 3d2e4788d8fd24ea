// Package throttle paces outgoing requests to a minimum interval.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the pause enforced between two fetches.
const DefaultInterval = time.Second

// Throttler enforces a minimum wall-clock interval between successive ticks.
// The first tick never blocks. A Throttler serves a single fetch stream.
type Throttler struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// New creates a Throttler. A negative interval selects DefaultInterval and
// zero disables pacing.
func New(interval time.Duration) *Throttler {
	if interval < 0 {
		interval = DefaultInterval
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttler{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Interval returns the configured interval.
func (t *Throttler) Interval() time.Duration {
	return t.interval
}

// Tick blocks until at least Interval has elapsed since the previous tick.
// It only fails when ctx is done before the slot arrives.
func (t *Throttler) Tick(ctx context.Context) error {
	return t.limiter.Wait(ctx)
}
