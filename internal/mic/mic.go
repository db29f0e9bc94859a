// Package mic holds the microphone toggle control. Actual audio capture is
// an external capability; this package only knows whether the mic is on and
// how to ask for it to be flipped.
package mic

import (
	"slices"
	"sync"
)

// Bridge connects a mic button to an externally owned mic capability.
type Bridge struct {
	on     func() bool
	toggle func()
}

// NewBridge returns a bridge reading on and invoking toggle when pressed.
func NewBridge(on func() bool, toggle func()) *Bridge {
	return &Bridge{on: on, toggle: toggle}
}

// On reports whether the microphone is currently on.
func (b *Bridge) On() bool {
	if b == nil || b.on == nil {
		return false
	}
	return b.on()
}

// Press triggers the toggle callback.
func (b *Bridge) Press() {
	if b == nil || b.toggle == nil {
		return
	}
	b.toggle()
}

// Icon returns the glyph for the current mic state.
func (b *Bridge) Icon() string {
	if b.On() {
		return "🎙"
	}
	return "🔇"
}

// Label returns the button caption for the current mic state.
func (b *Bridge) Label() string {
	if b.On() {
		return "Mic on"
	}
	return "Mic off"
}

// Switch is an in-process on/off capability with change callbacks.
type Switch struct {
	mu       sync.Mutex
	enabled  bool
	handlers []func(bool)
}

// NewSwitch returns a switch in the given initial position.
func NewSwitch(enabled bool) *Switch {
	return &Switch{enabled: enabled}
}

// Enabled reports the current position.
func (s *Switch) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Toggle flips the switch and returns the new position.
func (s *Switch) Toggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	enabled := s.enabled
	handlers := slices.Clone(s.handlers)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(enabled)
	}
	return enabled
}

// Set moves the switch to enabled. Handlers run only when the position changes.
func (s *Switch) Set(enabled bool) {
	s.mu.Lock()
	if s.enabled == enabled {
		s.mu.Unlock()
		return
	}
	s.enabled = enabled
	handlers := slices.Clone(s.handlers)
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(enabled)
	}
}

// OnChange registers fn to run after every position change.
func (s *Switch) OnChange(fn func(enabled bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

// Bridge returns a mic button bridge backed by this switch.
func (s *Switch) Bridge() *Bridge {
	return NewBridge(s.Enabled, func() { s.Toggle() })
}
