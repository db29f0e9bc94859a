package aistate

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lumen-io/lumen/internal/debounce/debouncetest"
)

func newTestStore(t *testing.T) (*Store, *debouncetest.Clock) {
	t.Helper()
	clock := debouncetest.NewClock()
	s := New(WithClock(clock))
	t.Cleanup(s.Close)
	return s, clock
}

// recorder collects notifications from a subscription.
type recorder struct {
	mu  sync.Mutex
	got []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
}

func (r *recorder) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.got...)
}

func equalStates(a, b []State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func expectUsageError(t *testing.T, want error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected panic with %v", want)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v is not an error", r)
		}
		var usage *UsageError
		if !errors.As(err, &usage) {
			t.Fatalf("panic %v is not a *UsageError", err)
		}
		if !errors.Is(err, want) {
			t.Fatalf("panic %v does not wrap %v", err, want)
		}
	}()
	fn()
}

func TestNewStartsLoading(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.Get(); got != Loading {
		t.Fatalf("Get() = %v, want %v", got, Loading)
	}
	if s.ExpiryPending() {
		t.Error("new store has a pending expiry")
	}
}

func TestSetThenGet(t *testing.T) {
	for _, state := range States() {
		t.Run(state.String(), func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Set(state)
			if got := s.Get(); got != state {
				t.Errorf("Get() = %v, want %v", got, state)
			}
		})
	}
}

func TestExactlyOnePredicate(t *testing.T) {
	for _, state := range States() {
		t.Run(state.String(), func(t *testing.T) {
			s, _ := newTestStore(t)
			s.Set(state)

			preds := map[State]bool{
				Idle:             s.IsIdle(),
				ThinkingSpeaking: s.IsThinkingSpeaking(),
				Interrupted:      s.IsInterrupted(),
				Loading:          s.IsLoading(),
				Listening:        s.IsListening(),
				Waiting:          s.IsWaiting(),
			}
			trueCount := 0
			for candidate, v := range preds {
				if v {
					trueCount++
					if candidate != state {
						t.Errorf("predicate for %v is true after Set(%v)", candidate, state)
					}
				}
			}
			if trueCount != 1 {
				t.Errorf("%d predicates true, want 1", trueCount)
			}

			if got, want := s.Flags(), FlagsFor(state); got != want {
				t.Errorf("Flags() = %+v, want %+v", got, want)
			}
		})
	}
}

func TestTransientStatesExpire(t *testing.T) {
	for _, state := range []State{Interrupted, Waiting} {
		t.Run(state.String(), func(t *testing.T) {
			s, clock := newTestStore(t)
			s.Set(state)
			if !s.ExpiryPending() {
				t.Fatal("expected pending expiry")
			}

			clock.Advance(DefaultExpiry - time.Millisecond)
			if got := s.Get(); got != state {
				t.Fatalf("Get() before expiry = %v, want %v", got, state)
			}

			clock.Advance(time.Millisecond)
			if got := s.Get(); got != Idle {
				t.Fatalf("Get() after expiry = %v, want %v", got, Idle)
			}
			if s.ExpiryPending() {
				t.Error("expiry still pending after firing")
			}
		})
	}
}

func TestStableStatesDoNotExpire(t *testing.T) {
	for _, state := range []State{Idle, ThinkingSpeaking, Loading, Listening} {
		t.Run(state.String(), func(t *testing.T) {
			s, clock := newTestStore(t)
			s.Set(state)
			if s.ExpiryPending() {
				t.Fatal("stable state armed an expiry")
			}
			clock.Advance(time.Minute)
			if got := s.Get(); got != state {
				t.Errorf("Get() = %v, want %v", got, state)
			}
		})
	}
}

func TestSupersededExpiryIsCancelled(t *testing.T) {
	for _, next := range States() {
		if next.Transient() {
			continue
		}
		t.Run(next.String(), func(t *testing.T) {
			s, clock := newTestStore(t)
			s.Set(Waiting)
			clock.Advance(500 * time.Millisecond)
			s.Set(next)

			clock.Advance(2 * DefaultExpiry)
			if got := s.Get(); got != next {
				t.Errorf("Get() = %v, want %v (stale expiry overrode it)", got, next)
			}
			if clock.Pending() != 0 {
				t.Errorf("pending timers = %d, want 0", clock.Pending())
			}
		})
	}
}

func TestReenteringTransientResetsWindow(t *testing.T) {
	s, clock := newTestStore(t)
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.Set(Interrupted)
	clock.Advance(1500 * time.Millisecond)
	s.Set(Interrupted) // re-armed: now due at t=3500ms

	clock.Advance(500 * time.Millisecond) // t=2000ms, the first deadline
	if got := s.Get(); got != Interrupted {
		t.Fatalf("at t=2000ms Get() = %v, want %v (first timer fired)", got, Interrupted)
	}

	clock.Advance(1400 * time.Millisecond) // t=3400ms
	if got := s.Get(); got != Interrupted {
		t.Fatalf("at t=3400ms Get() = %v, want %v", got, Interrupted)
	}

	clock.Advance(100 * time.Millisecond) // t=3500ms
	if got := s.Get(); got != Idle {
		t.Fatalf("at t=3500ms Get() = %v, want %v", got, Idle)
	}

	want := []State{Loading, Interrupted, Interrupted, Idle}
	if got := rec.states(); !equalStates(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}
}

func TestSwitchingTransientStatesKeepsOneTimer(t *testing.T) {
	s, clock := newTestStore(t)

	s.Set(Interrupted)
	clock.Advance(time.Second)
	s.Set(Waiting)
	if clock.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", clock.Pending())
	}

	clock.Advance(time.Second)
	if got := s.Get(); got != Waiting {
		t.Fatalf("Get() = %v, want %v", got, Waiting)
	}
	clock.Advance(time.Second)
	if got := s.Get(); got != Idle {
		t.Fatalf("Get() = %v, want %v", got, Idle)
	}
}

func TestResetAlwaysIdle(t *testing.T) {
	for _, state := range States() {
		t.Run(state.String(), func(t *testing.T) {
			s, clock := newTestStore(t)
			s.Set(state)
			s.Reset()
			if got := s.Get(); got != Idle {
				t.Fatalf("Get() = %v, want %v", got, Idle)
			}
			if s.ExpiryPending() {
				t.Fatal("Reset left an expiry pending")
			}

			rec := &recorder{}
			s.Subscribe(rec.record)
			clock.Advance(2 * DefaultExpiry)
			if got := rec.states(); !equalStates(got, []State{Idle}) {
				t.Errorf("notifications after Reset = %v, want [idle]", got)
			}
		})
	}
}

func TestSubscribeReceivesCurrentThenChanges(t *testing.T) {
	s, clock := newTestStore(t)
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.Set(Idle)
	s.Set(ThinkingSpeaking)
	s.Set(Interrupted)
	clock.Advance(DefaultExpiry)

	want := []State{Loading, Idle, ThinkingSpeaking, Interrupted, Idle}
	if got := rec.states(); !equalStates(got, want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
}

func TestEverySubscriberNotifiedOncePerSet(t *testing.T) {
	s, _ := newTestStore(t)

	recs := make([]*recorder, 5)
	for i := range recs {
		recs[i] = &recorder{}
		s.Subscribe(recs[i].record)
	}

	s.Set(Listening)
	s.Set(Listening)
	s.Set(Idle)

	want := []State{Loading, Listening, Listening, Idle}
	for i, rec := range recs {
		if got := rec.states(); !equalStates(got, want) {
			t.Errorf("subscriber %d got %v, want %v", i, got, want)
		}
	}
}

func TestNotificationSeesPostCallValue(t *testing.T) {
	s, _ := newTestStore(t)

	var mismatches []string
	s.Subscribe(func(got State) {
		if current := s.Get(); current != got {
			mismatches = append(mismatches, got.String()+"!="+current.String())
		}
	})
	for _, state := range States() {
		s.Set(state)
	}
	if len(mismatches) > 0 {
		t.Errorf("subscriber saw stale values: %v", mismatches)
	}
}

func TestUnsubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	rec := &recorder{}
	unsubscribe := s.Subscribe(rec.record)

	s.Set(Idle)
	unsubscribe()
	unsubscribe()
	s.Set(Listening)

	if got, want := rec.states(), []State{Loading, Idle}; !equalStates(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}
}

func TestReentrantSetIsQueued(t *testing.T) {
	s, _ := newTestStore(t)

	first := &recorder{}
	s.Subscribe(func(state State) {
		first.record(state)
		if state == Interrupted {
			s.Reset()
		}
	})
	second := &recorder{}
	s.Subscribe(second.record)

	s.Set(Interrupted)

	want := []State{Loading, Interrupted, Idle}
	if got := first.states(); !equalStates(got, want) {
		t.Errorf("first subscriber got %v, want %v", got, want)
	}
	if got, want := second.states(), []State{Loading, Interrupted, Idle}; !equalStates(got, want) {
		t.Errorf("second subscriber got %v, want %v", got, want)
	}
	if got := s.Get(); got != Idle {
		t.Errorf("Get() = %v, want %v", got, Idle)
	}
}

func TestCloseCancelsPendingExpiry(t *testing.T) {
	clock := debouncetest.NewClock()
	s := New(WithClock(clock))
	rec := &recorder{}
	s.Subscribe(rec.record)

	s.Set(Waiting)
	s.Close()
	s.Close()
	clock.Advance(2 * DefaultExpiry)

	if got, want := rec.states(), []State{Loading, Waiting}; !equalStates(got, want) {
		t.Errorf("notifications = %v, want %v", got, want)
	}
	if clock.Pending() != 0 {
		t.Errorf("pending timers = %d after Close, want 0", clock.Pending())
	}
}

func TestUsageErrors(t *testing.T) {
	t.Run("nil store get", func(t *testing.T) {
		var s *Store
		expectUsageError(t, ErrNotInitialized, func() { s.Get() })
	})
	t.Run("nil store set", func(t *testing.T) {
		var s *Store
		expectUsageError(t, ErrNotInitialized, func() { s.Set(Idle) })
	})
	t.Run("nil store subscribe", func(t *testing.T) {
		var s *Store
		expectUsageError(t, ErrNotInitialized, func() { s.Subscribe(func(State) {}) })
	})
	t.Run("closed store get", func(t *testing.T) {
		s := New()
		s.Close()
		expectUsageError(t, ErrClosed, func() { s.Get() })
	})
	t.Run("closed store reset", func(t *testing.T) {
		s := New()
		s.Close()
		expectUsageError(t, ErrClosed, func() { s.Reset() })
	})
	t.Run("invalid state", func(t *testing.T) {
		s, _ := newTestStore(t)
		expectUsageError(t, ErrInvalidState, func() { s.Set(State(42)) })
		if got := s.Get(); got != Loading {
			t.Errorf("Get() = %v after rejected Set, want %v", got, Loading)
		}
	})
}

func TestPanickingSubscriberDoesNotWedgeStore(t *testing.T) {
	s, _ := newTestStore(t)

	s.Subscribe(func(state State) {
		if state == Listening {
			panic("boom")
		}
	})
	rec := &recorder{}
	s.Subscribe(rec.record)

	func() {
		defer func() { _ = recover() }()
		s.Set(Listening)
	}()
	s.Set(Idle)

	got := rec.states()
	if len(got) == 0 || got[len(got)-1] != Idle {
		t.Errorf("notifications = %v, want last to be idle", got)
	}
}

func TestConcurrentSettersDeliverInOrder(t *testing.T) {
	s := New(WithExpiry(time.Hour))
	defer s.Close()

	rec := &recorder{}
	s.Subscribe(rec.record)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Set(States()[(i+j)%len(States())])
			}
		}(i)
	}
	wg.Wait()

	got := rec.states()
	if len(got) != 1+8*100 {
		t.Fatalf("got %d notifications, want %d", len(got), 1+8*100)
	}
	if last := got[len(got)-1]; last != s.Get() {
		t.Errorf("last notification %v != Get() %v", last, s.Get())
	}
}

func TestRealClockExpiry(t *testing.T) {
	s := New(WithExpiry(20 * time.Millisecond))
	defer s.Close()

	idle := make(chan struct{}, 1)
	s.Subscribe(func(state State) {
		if state == Idle {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})
	s.Set(Interrupted)

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("interrupted state did not expire")
	}
}

func TestSetIf(t *testing.T) {
	s, clock := newTestStore(t)
	s.Set(ThinkingSpeaking)

	notSpeaking := func(current State) bool { return current != ThinkingSpeaking }
	if s.SetIf(Waiting, notSpeaking) {
		t.Fatal("SetIf applied while speaking")
	}
	if got := s.Get(); got != ThinkingSpeaking {
		t.Fatalf("Get() = %v, want %v", got, ThinkingSpeaking)
	}

	s.Reset()
	if !s.SetIf(Waiting, notSpeaking) {
		t.Fatal("SetIf rejected an allowed transition")
	}
	clock.Advance(DefaultExpiry)
	if got := s.Get(); got != Idle {
		t.Fatalf("Get() = %v, want %v after expiry", got, Idle)
	}
}
