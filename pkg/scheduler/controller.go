package scheduler

import (
	"context"
	"sync"
)

// Controller holds the Running/Stopped state of the interval loop. Every Start
// opens a new epoch so timers armed in an earlier run can recognise themselves
// as stale.
type Controller struct {
	mu      sync.Mutex
	running bool
	epoch   uint64
	signal  chan struct{}
}

// NewController constructs a controller in the stopped state.
func NewController() *Controller {
	return &Controller{signal: make(chan struct{}, 1)}
}

// Start transitions to Running. It reports false when already running.
func (c *Controller) Start() bool {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return false
	}
	c.running = true
	c.epoch++
	c.mu.Unlock()
	c.notify()
	return true
}

// Stop transitions to Stopped. It reports false when already stopped.
func (c *Controller) Stop() bool {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return false
	}
	c.running = false
	c.mu.Unlock()
	c.notify()
	return true
}

// Running reports whether automatic capture is enabled.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Current reports whether epoch is the live running epoch.
func (c *Controller) Current(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && c.epoch == epoch
}

// Wait blocks until the controller is running and returns the live epoch.
func (c *Controller) Wait(ctx context.Context) (uint64, error) {
	for {
		c.mu.Lock()
		running, epoch := c.running, c.epoch
		c.mu.Unlock()
		if running {
			return epoch, nil
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-c.signal:
		}
	}
}

// Changed delivers a value after any state transition. Signals coalesce, so
// receivers must re-check state.
func (c *Controller) Changed() <-chan struct{} {
	return c.signal
}

// State reports the textual state for diagnostics.
func (c *Controller) State() string {
	if c.Running() {
		return "running"
	}
	return "stopped"
}

func (c *Controller) notify() {
	select {
	case c.signal <- struct{}{}:
	default:
	}
}
