package debounce

import (
	"sync"
	"time"
)

// Keyed debounces independently per key, e.g. one slot per file path.
type Keyed struct {
	clock Clock

	mu      sync.Mutex
	slots   map[string]*Slot
	stopped bool
}

// NewKeyed returns an empty keyed debouncer. A nil clock means RealClock.
func NewKeyed(clock Clock) *Keyed {
	if clock == nil {
		clock = RealClock
	}
	return &Keyed{
		clock: clock,
		slots: make(map[string]*Slot),
	}
}

// Trigger runs fn after d unless Trigger is called again for the same key first.
func (k *Keyed) Trigger(key string, d time.Duration, fn func()) {
	k.mu.Lock()
	if k.stopped {
		k.mu.Unlock()
		return
	}
	slot, ok := k.slots[key]
	if !ok {
		slot = NewSlot(k.clock)
		k.slots[key] = slot
	}
	k.mu.Unlock()

	slot.Schedule(d, fn)
}

// Pending returns the number of keys with a scheduled action.
func (k *Keyed) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	n := 0
	for _, slot := range k.slots {
		if slot.Pending() {
			n++
		}
	}
	return n
}

// Stop cancels every pending action. Later triggers are ignored.
func (k *Keyed) Stop() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.stopped = true
	for key, slot := range k.slots {
		// A Trigger that already looked up slot may still call Schedule.
		slot.Stop()
		delete(k.slots, key)
	}
}
