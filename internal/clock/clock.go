// Package clock provides the timing abstractions used by playback.
//
// Two kinds of time exist:
//
//   - Scheduled time: the typewriter reveal timer and the auto-mode timer are
//     callbacks registered with a Scheduler. Production schedulers deliver
//     callbacks on the engine's single writer goroutine; tests use
//     testutil.ManualScheduler to advance time explicitly.
//   - Logical time: Clock hands out a strictly increasing sequence number
//     used to order history entries. It never reads the wall clock.
package clock

import (
	"sync/atomic"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It returns false if the callback already
	// ran or was already stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
//
// Implementations used by the engine must deliver callbacks on the same
// goroutine that mutates playback state, and must never run a callback
// whose Timer was stopped.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Stop stops t if it is non-nil. Convenience for optional timer fields.
func Stop(t Timer) {
	if t != nil {
		t.Stop()
	}
}

// Clock is a monotonic logical clock.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
