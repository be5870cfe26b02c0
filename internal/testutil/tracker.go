package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/vk/pigeon/internal/pigeon"
)

// TrackedKey is the attribute provided by ConcurrencyTracker.
const TrackedKey pigeon.Key = "tracked"

// ConcurrencyTracker is a module whose single action sleeps while recording
// how many of its executions overlap.
type ConcurrencyTracker struct {
	Requires []pigeon.Key
	Sleep    time.Duration

	mu     sync.Mutex
	active int
	max    int
	calls  int
}

// Register adds the tracking action to p.
func (c *ConcurrencyTracker) Register(p *pigeon.Pigeon) {
	p.Add(pigeon.Action{
		Name:     "tracked",
		Requires: c.Requires,
		Provide:  TrackedKey,
		Compute: func(ctx context.Context, _ []pigeon.Value) (pigeon.Value, error) {
			c.enter()
			defer c.leave()
			select {
			case <-time.After(c.Sleep):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return true, nil
		},
	})
}

func (c *ConcurrencyTracker) enter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.active++
	if c.active > c.max {
		c.max = c.active
	}
}

func (c *ConcurrencyTracker) leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active--
}

// Max returns the highest number of overlapping executions seen.
func (c *ConcurrencyTracker) Max() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.max
}

// Calls returns how many times the tracking action ran.
func (c *ConcurrencyTracker) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
