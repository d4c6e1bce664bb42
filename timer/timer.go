// Package timer contains the countdown engine: a single worker goroutine
// per countdown that decrements once per second and reports ticks through
// a Notify callback.
//
// Maintenance notes:
//   - Start and Cancel are not safe for concurrent use. They are meant to be
//     called only from the dispatcher event loop, which owns the Engine.
//   - The worker keeps the remaining seconds in a local variable. Nothing
//     outside the worker ever writes it, so there is no lock; consumers
//     rebuild the state from the events they receive.
//   - The cadence is a plain sleep of TickInterval between decrements. The
//     time spent emitting an event is not subtracted, so a long countdown
//     drifts by scheduling jitter. Sub-second precision is not needed for a
//     kitchen-style timer; keep it this way rather than switching to a
//     deadline-based ticker.
package timer

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Engine runs at most one countdown at a time.
type Engine struct {
	clock    Clock
	interval time.Duration
	notify   Notify

	seq    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates an engine that reports events to notify. A nil clock
// means the wall clock.
func NewEngine(clock Clock, notify Notify) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	return &Engine{clock: clock, interval: TickInterval, notify: notify}
}

// Start begins a countdown of the given seconds, replacing any countdown
// already in progress. The returned id tags every event of the new
// countdown.
func (e *Engine) Start(seconds int) (uint64, error) {
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: %d seconds", ErrInvalidDuration, seconds)
	}

	// Last writer wins: the previous worker is fully stopped before the
	// new one exists, so none of its events can follow this call.
	e.Cancel()

	e.seq++
	id := e.seq
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done

	go e.run(ctx, id, seconds, done)
	return id, nil
}

// Cancel stops the active countdown, if any, and waits for its worker to
// exit. No completion event is emitted.
func (e *Engine) Cancel() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	e.cancel = nil
	e.done = nil
}

// Running reports whether a countdown worker is active.
func (e *Engine) Running() bool {
	if e.done == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Current returns the id of the most recent countdown.
func (e *Engine) Current() uint64 {
	return e.seq
}

func (e *Engine) run(ctx context.Context, id uint64, seconds int, done chan struct{}) {
	defer close(done)

	remaining := seconds
	for remaining > 0 {
		if !e.clock.Sleep(ctx, e.interval) || ctx.Err() != nil {
			return
		}
		remaining--

		ev := Event{Kind: EventTick, Countdown: id, Remaining: remaining}
		if remaining == 0 {
			ev.Kind = EventCompleted
		}
		if !e.notify(ctx, ev) {
			log.Printf("timer: countdown %d stopped at %ds", id, remaining)
			return
		}
	}
}
