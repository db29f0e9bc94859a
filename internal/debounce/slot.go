package debounce

import (
	"sync"
	"time"
)

// Slot holds at most one pending action.
type Slot struct {
	clock Clock

	mu      sync.Mutex
	timer   Timer
	gen     uint64
	stopped bool
}

// NewSlot returns an empty slot driven by clock. A nil clock means RealClock.
func NewSlot(clock Clock) *Slot {
	if clock == nil {
		clock = RealClock
	}
	return &Slot{clock: clock}
}

// Schedule cancels any pending action and runs fn after d. It does nothing
// once the slot is stopped.
func (s *Slot) Schedule(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if gen != s.gen || s.timer == nil {
			// Superseded or cancelled after the runtime already queued us.
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		fn()
	})
}

// Cancel drops the pending action, if any. It reports whether one was pending.
func (s *Slot) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

// Stop cancels the pending action and refuses every later Schedule.
func (s *Slot) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.stopLocked()
}

// Pending reports whether an action is scheduled and has not fired yet.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Slot) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.gen++
	return true
}
