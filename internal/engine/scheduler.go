package engine

import (
	"sync/atomic"
	"time"

	"github.com/roach88/novella/internal/clock"
)

// loopScheduler runs callbacks on the Run goroutine.
//
// Each callback is armed with time.AfterFunc; when the timer fires, the
// callback is posted to the input queue instead of running on the timer
// goroutine.
type loopScheduler struct {
	q *inputQueue
}

type loopTimer struct {
	t    *time.Timer
	done atomic.Bool
}

func (s loopScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		s.q.Enqueue(Input{Kind: inputTimer, fire: func() {
			// Stop may have run between posting and handling.
			if lt.done.CompareAndSwap(false, true) {
				f()
			}
		}})
	})
	return lt
}

func (lt *loopTimer) Stop() bool {
	lt.t.Stop()
	return lt.done.CompareAndSwap(false, true)
}
