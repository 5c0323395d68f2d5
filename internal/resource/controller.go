package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds compile limits.
type Config struct {
	// MaxConcurrentCompiles is the maximum number of compiles in flight.
	// If 0, defaults to 1.
	MaxConcurrentCompiles int64

	// CompilesPerSecond is the sustained compile rate.
	// If 0, unlimited.
	CompilesPerSecond float64

	// Burst is the number of compiles allowed above the sustained rate.
	// If 0, defaults to MaxConcurrentCompiles.
	Burst int
}

// Controller manages compile concurrency and throughput.
type Controller struct {
	sem      *semaphore.Weighted
	limiter  *rate.Limiter // nil if unlimited
	inFlight atomic.Int64
	total    atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentCompiles <= 0 {
		cfg.MaxConcurrentCompiles = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.MaxConcurrentCompiles)
	}

	c := &Controller{
		sem: semaphore.NewWeighted(cfg.MaxConcurrentCompiles),
	}

	if cfg.CompilesPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.CompilesPerSecond), cfg.Burst)
	}

	return c
}

// AcquireCompile blocks until a compile slot and a rate token are
// available, or ctx is done.
func (c *Controller) AcquireCompile(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	c.total.Add(1)
	return nil
}

// ReleaseCompile releases a compile slot.
func (c *Controller) ReleaseCompile() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.sem.Release(1)
}

// InFlight returns the number of compiles currently holding a slot.
func (c *Controller) InFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// Total returns the number of compile slots handed out so far.
func (c *Controller) Total() int64 {
	if c == nil {
		return 0
	}
	return c.total.Load()
}
