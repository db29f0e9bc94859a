package aistate

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"

	"github.com/lumen-io/lumen/internal/debounce"
)

// DefaultExpiry is how long Interrupted and Waiting last before reverting to Idle.
const DefaultExpiry = 2 * time.Second

// Option configures a Store.
type Option func(*Store)

// WithClock drives expiry timers from clock instead of the wall clock.
func WithClock(clock debounce.Clock) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithExpiry overrides DefaultExpiry.
func WithExpiry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.expiryDelay = d
		}
	}
}

// Store is the single owner of the activity state.
//
// Set applies a transition atomically and then notifies subscribers in the
// order transitions were applied. A Set issued from inside a subscriber is
// queued behind the notification being delivered, so it never deadlocks and
// never reorders. When another goroutine is already delivering, Set returns
// once its notification is queued.
type Store struct {
	clock          debounce.Clock
	expiryDelay    time.Duration
	meterProvider  metric.MeterProvider
	loggerProvider otellog.LoggerProvider
	inst           instruments

	mu          sync.Mutex
	current     State
	seq         uint64 // bumped on every applied transition
	expiry      *debounce.Slot
	closed      bool
	subs        []*subscriber
	queue       []notification
	dispatching bool
}

type subscriber struct {
	fn      func(State)
	removed atomic.Bool
}

type notification struct {
	state State
	to    []*subscriber
}

// New creates a store in the Loading state.
func New(opts ...Option) *Store {
	s := &Store{
		clock:       debounce.RealClock,
		expiryDelay: DefaultExpiry,
		current:     Loading,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.expiry = debounce.NewSlot(s.clock)
	s.inst = newInstruments(s.meterProvider, s.loggerProvider)
	return s
}

// Get returns the current state.
func (s *Store) Get() State {
	if s == nil {
		usageFault("get", ErrNotInitialized)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		usageFault("get", ErrClosed)
	}
	return s.current
}

// Set replaces the current state. Any pending expiry is cancelled first;
// transient states arm a fresh one.
func (s *Store) Set(next State) {
	if s == nil {
		usageFault("set", ErrNotInitialized)
	}
	if !next.Valid() {
		usageFault("set", fmt.Errorf("%w: %d", ErrInvalidState, int(next)))
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		usageFault("set", ErrClosed)
	}
	s.applyLocked(next)
	s.dispatchLocked()
}

// SetIf applies next only when allowed approves the current state, checked
// and applied atomically. It reports whether the transition happened.
func (s *Store) SetIf(next State, allowed func(current State) bool) bool {
	if s == nil {
		usageFault("set", ErrNotInitialized)
	}
	if !next.Valid() {
		usageFault("set", fmt.Errorf("%w: %d", ErrInvalidState, int(next)))
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		usageFault("set", ErrClosed)
	}
	if !allowed(s.current) {
		s.mu.Unlock()
		return false
	}
	s.applyLocked(next)
	s.dispatchLocked()
	return true
}

// Reset returns to Idle regardless of the current state or pending expiry.
func (s *Store) Reset() {
	s.Set(Idle)
}

// Flags returns all predicates computed from one read of the current state.
func (s *Store) Flags() Flags {
	return FlagsFor(s.Get())
}

// IsIdle reports whether the assistant is at rest.
func (s *Store) IsIdle() bool { return s.Get() == Idle }

// IsThinkingSpeaking reports whether a response is being produced.
func (s *Store) IsThinkingSpeaking() bool { return s.Get() == ThinkingSpeaking }

// IsInterrupted reports whether a response was just cut off.
func (s *Store) IsInterrupted() bool { return s.Get() == Interrupted }

// IsLoading reports whether a character is being loaded.
func (s *Store) IsLoading() bool { return s.Get() == Loading }

// IsListening reports whether the microphone is capturing.
func (s *Store) IsListening() bool { return s.Get() == Listening }

// IsWaiting reports whether the user is typing.
func (s *Store) IsWaiting() bool { return s.Get() == Waiting }

// Subscribe registers fn for every state change. fn receives the current
// state immediately, then each new state in order. The returned function
// unsubscribes and is safe to call more than once.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	if s == nil {
		usageFault("subscribe", ErrNotInitialized)
	}
	if fn == nil {
		usageFault("subscribe", fmt.Errorf("nil subscriber"))
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		usageFault("subscribe", ErrClosed)
	}
	sub := &subscriber{fn: fn}
	s.subs = append(s.subs, sub)
	s.queue = append(s.queue, notification{state: s.current, to: []*subscriber{sub}})
	s.dispatchLocked()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(sub) })
	}
}

// Close cancels any pending expiry and drops all subscribers. No
// notification fires afterwards. Close is idempotent; any other method
// called after it panics with a *UsageError.
func (s *Store) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.expiry.Stop()
	for _, sub := range s.subs {
		sub.removed.Store(true)
	}
	s.subs = nil
	s.queue = nil
}

// ExpiryPending reports whether a transient state is waiting to expire.
func (s *Store) ExpiryPending() bool {
	if s == nil {
		return false
	}
	return s.expiry.Pending()
}

func (s *Store) applyLocked(next State) {
	s.expiry.Cancel()

	prev := s.current
	s.current = next
	s.seq++
	if next.Transient() {
		seq := s.seq
		s.expiry.Schedule(s.expiryDelay, func() { s.expire(seq) })
	}

	to := make([]*subscriber, len(s.subs))
	copy(to, s.subs)
	s.queue = append(s.queue, notification{state: next, to: to})

	s.inst.recordTransition(prev, next)
}

// expire runs on the expiry timer. seq identifies the transition that armed
// it; if anything was applied since, the timer is stale and does nothing.
func (s *Store) expire(seq uint64) {
	s.mu.Lock()
	if s.closed || s.seq != seq {
		s.mu.Unlock()
		return
	}
	s.inst.recordExpiry(s.current)
	s.applyLocked(Idle)
	s.dispatchLocked()
}

// dispatchLocked drains the notification queue unless another caller is
// already draining it. It must be called with s.mu held and releases it.
func (s *Store) dispatchLocked() {
	if s.dispatching {
		s.mu.Unlock()
		return
	}
	s.dispatching = true

	delivered := false
	defer func() {
		if !delivered {
			// A subscriber panicked; let the next caller resume draining.
			s.mu.Lock()
			s.dispatching = false
			s.mu.Unlock()
		}
	}()

	for len(s.queue) > 0 {
		n := s.queue[0]
		s.queue[0] = notification{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		for _, sub := range n.to {
			if !sub.removed.Load() {
				sub.fn(n.state)
			}
		}

		s.mu.Lock()
	}
	s.dispatching = false
	delivered = true
	s.mu.Unlock()
}

func (s *Store) unsubscribe(target *subscriber) {
	target.removed.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}
