package mic

import "testing"

func TestBridgeDelegates(t *testing.T) {
	on := false
	presses := 0
	b := NewBridge(func() bool { return on }, func() { presses++; on = !on })

	if b.On() || b.Label() != "Mic off" {
		t.Fatalf("initial bridge state: on=%v label=%q", b.On(), b.Label())
	}
	b.Press()
	if presses != 1 || !b.On() || b.Label() != "Mic on" {
		t.Fatalf("after press: presses=%d on=%v label=%q", presses, b.On(), b.Label())
	}
}

func TestNilBridgeIsOff(t *testing.T) {
	var b *Bridge
	b.Press()
	if b.On() {
		t.Error("nil bridge reports on")
	}
}

func TestSwitch(t *testing.T) {
	s := NewSwitch(false)

	var changes []bool
	s.OnChange(func(enabled bool) { changes = append(changes, enabled) })

	if !s.Toggle() {
		t.Fatal("Toggle() from off should return true")
	}
	s.Set(true) // no change, no callback
	s.Set(false)
	s.Bridge().Press()

	want := []bool{true, false, true}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("changes = %v, want %v", changes, want)
		}
	}
	if !s.Enabled() {
		t.Error("switch should end enabled")
	}
}

func TestHandlerRegisteredDuringChangeWaitsForNextOne(t *testing.T) {
	s := NewSwitch(false)

	late := 0
	s.OnChange(func(bool) {
		s.OnChange(func(bool) { late++ })
	})

	s.Toggle()
	if late != 0 {
		t.Fatalf("handler added during a change ran for it %d times", late)
	}
	s.Toggle()
	if late != 1 {
		t.Errorf("late handler ran %d times on the next change, want 1", late)
	}
}
