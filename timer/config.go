package timer

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidDuration is returned when a countdown is requested with a
// non-positive or unparseable duration.
var ErrInvalidDuration = errors.New("invalid timer duration")

// TickInterval is the countdown cadence.
const TickInterval = time.Second

// State is the countdown state seen by the event loop.
type State struct {
	Remaining int
	Running   bool
}

// EventKind distinguishes tick and completion events.
type EventKind int

const (
	EventTick EventKind = iota
	EventCompleted
)

// Event is emitted by a countdown worker. Countdown identifies the Start
// call that produced it so the consumer can drop events of a superseded
// countdown.
type Event struct {
	Kind      EventKind
	Countdown uint64
	Remaining int
}

// State returns the timer state the event implies.
func (e Event) State() State {
	return State{Remaining: e.Remaining, Running: e.Kind == EventTick}
}

// Notify delivers an event to the single consumer. It returns false when
// the event could not be delivered because ctx was cancelled or the
// consumer is gone.
type Notify func(ctx context.Context, ev Event) bool

// Clock abstracts the wait between ticks.
type Clock interface {
	// Sleep waits for d or until ctx is done. It reports whether the full
	// duration elapsed.
	Sleep(ctx context.Context, d time.Duration) bool
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// RealClock returns the wall clock used outside tests.
func RealClock() Clock {
	return realClock{}
}
