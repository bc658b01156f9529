package testutil

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/roach88/novella/internal/clock"
)

// ManualScheduler is a clock.Scheduler driven explicitly by tests.
//
// Callbacks never run on their own. Advance moves virtual time forward and
// runs every callback that falls due, in due-time order (registration order
// breaks ties). Callbacks may schedule further callbacks; those run within
// the same Advance if they fall due before its target.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
// Callbacks run on the goroutine that calls Advance or RunNext.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
	delays []time.Duration
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
}

// NewManualScheduler creates a scheduler at virtual time 0.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers f to run once virtual time reaches now+d.
//
// Implements clock.Scheduler.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) clock.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	s.delays = append(s.delays, d)
	return t
}

// Stop cancels the timer. Returns false if it already ran or was stopped.
func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

func (s *ManualScheduler) remove(t *manualTimer) {
	for i, other := range s.timers {
		if other == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// next pops the earliest timer due at or before limit.
func (s *ManualScheduler) next(limit time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at != s.timers[j].at {
			return s.timers[i].at < s.timers[j].at
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	t := s.timers[0]
	if t.at > limit {
		return nil
	}
	s.timers = s.timers[1:]
	t.stopped = true
	if t.at > s.now {
		s.now = t.at
	}
	return t
}

// Advance moves virtual time forward by d, running due callbacks.
// Returns the number of callbacks run.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		t := s.next(target)
		if t == nil {
			break
		}
		t.f()
		fired++
	}

	s.mu.Lock()
	if target > s.now {
		s.now = target
	}
	s.mu.Unlock()
	return fired
}

// RunNext jumps to the earliest pending callback and runs it.
// Returns false if nothing is pending.
func (s *ManualScheduler) RunNext() bool {
	t := s.next(time.Duration(math.MaxInt64))
	if t == nil {
		return false
	}
	t.f()
	return true
}

// RunAll runs pending callbacks until none remain or limit callbacks have
// run. Returns the number run.
func (s *ManualScheduler) RunAll(limit int) int {
	n := 0
	for n < limit && s.RunNext() {
		n++
	}
	return n
}

// Pending returns the number of callbacks waiting to run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Now returns the current virtual time.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Delays returns every delay passed to AfterFunc, in call order.
func (s *ManualScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.delays))
	copy(out, s.delays)
	return out
}
