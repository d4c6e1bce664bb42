// Package testutil provides fakes shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"
)

// Fataler is the part of testing.TB (and rapid.T) the fakes need.
type Fataler interface {
	Fatalf(format string, args ...any)
}

// ManualClock is a timer.Clock whose sleeps only end when the test calls
// Advance.
type ManualClock struct {
	mu      sync.Mutex
	waiters []waiter
	wake    chan struct{}
}

type waiter struct {
	ctx context.Context
	ch  chan struct{}
}

// NewManualClock creates a clock with no pending sleepers.
func NewManualClock() *ManualClock {
	return &ManualClock{wake: make(chan struct{}, 1)}
}

// Sleep blocks until Advance releases it or ctx is done.
func (c *ManualClock) Sleep(ctx context.Context, _ time.Duration) bool {
	w := waiter{ctx: ctx, ch: make(chan struct{})}
	c.mu.Lock()
	c.waiters = append(c.waiters, w)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}

	select {
	case <-ctx.Done():
		return false
	case <-w.ch:
		return ctx.Err() == nil
	}
}

// Advance releases every live sleeper, waiting up to a second for one to
// appear. Sleepers whose context is already cancelled are discarded.
func (c *ManualClock) Advance(t Fataler) {
	deadline := time.After(time.Second)
	for {
		if c.release() {
			return
		}
		select {
		case <-c.wake:
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			t.Fatalf("ManualClock.Advance: no goroutine is sleeping")
			return
		}
	}
}

// AdvanceN calls Advance n times.
func (c *ManualClock) AdvanceN(t Fataler, n int) {
	for i := 0; i < n; i++ {
		c.Advance(t)
	}
}

// Sleepers returns the number of live sleepers.
func (c *ManualClock) Sleepers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	return len(c.waiters)
}

func (c *ManualClock) release() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pruneLocked()
	if len(c.waiters) == 0 {
		return false
	}
	for _, w := range c.waiters {
		close(w.ch)
	}
	c.waiters = nil
	return true
}

func (c *ManualClock) pruneLocked() {
	live := c.waiters[:0]
	for _, w := range c.waiters {
		if w.ctx.Err() == nil {
			live = append(live, w)
		}
	}
	c.waiters = live
}
