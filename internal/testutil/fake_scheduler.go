package testutil

import (
	"sync"
	"time"

	"github.com/frudas24/webkvm/internal/control"
)

// FakeScheduler implements control.Scheduler on a manual clock.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*FakeTimer
}

// FakeTimer is a task scheduled on a FakeScheduler.
type FakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// Ensure FakeScheduler implements the interface.
var _ control.Scheduler = (*FakeScheduler)(nil)

// AfterFunc schedules f to run once the clock passes d from now.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) control.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &FakeTimer{at: s.now + d, fn: f}
	s.timers = append(s.timers, t)
	return &fakeTimerHandle{s: s, t: t}
}

// Advance moves the clock forward and runs due tasks in schedule order.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []func()
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.at <= s.now {
			t.fired = true
			due = append(due, t.fn)
		}
	}
	s.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

// Pending returns the number of tasks neither fired nor stopped.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeTimerHandle struct {
	s *FakeScheduler
	t *FakeTimer
}

// Stop cancels the task and reports whether it was still pending.
func (h *fakeTimerHandle) Stop() bool {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.t.stopped || h.t.fired {
		return false
	}
	h.t.stopped = true
	return true
}
