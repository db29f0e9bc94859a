// Package aistate coordinates what the assistant is doing right now.
//
// A single Store owns the current activity State. Every UI surface (avatar,
// chat bubble, mic button, tray icon) reads it through a subscription instead
// of keeping its own copy. Interrupted and Waiting are transient: they expire
// back to Idle unless another state is set first.
package aistate

import (
	"fmt"
	"strings"
)

// State is the assistant activity. The zero value is Idle.
type State int

const (
	// Idle is the rest state. The assistant may speak proactively and accepts input.
	Idle State = iota
	// ThinkingSpeaking means a response is being generated or delivered.
	ThinkingSpeaking
	// Interrupted means a response was cut off. Transient.
	Interrupted
	// Loading means a model or character is being (re)loaded.
	Loading
	// Listening means microphone capture is active.
	Listening
	// Waiting means the user is typing. Transient.
	Waiting
)

var stateNames = [...]string{
	Idle:             "idle",
	ThinkingSpeaking: "thinking-speaking",
	Interrupted:      "interrupted",
	Loading:          "loading",
	Listening:        "listening",
	Waiting:          "waiting",
}

// States returns every activity state in declaration order.
func States() []State {
	return []State{Idle, ThinkingSpeaking, Interrupted, Loading, Listening, Waiting}
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	return s >= Idle && s <= Waiting
}

// Transient reports whether s expires back to Idle on its own.
func (s State) Transient() bool {
	return s == Interrupted || s == Waiting
}

func (s State) String() string {
	if !s.Valid() {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// ParseState parses a state name. Underscores, spaces and case are ignored,
// so "thinking_speaking" and "ThinkingSpeaking" both work.
func ParseState(name string) (State, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	for i, n := range stateNames {
		if norm == n || norm == strings.ReplaceAll(n, "-", "") {
			return State(i), nil
		}
	}
	return Idle, fmt.Errorf("%w: %q", ErrInvalidState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Flags holds one boolean per state. Exactly one field is true.
type Flags struct {
	Idle             bool
	ThinkingSpeaking bool
	Interrupted      bool
	Loading          bool
	Listening        bool
	Waiting          bool
}

// FlagsFor derives the predicate set for s.
func FlagsFor(s State) Flags {
	return Flags{
		Idle:             s == Idle,
		ThinkingSpeaking: s == ThinkingSpeaking,
		Interrupted:      s == Interrupted,
		Loading:          s == Loading,
		Listening:        s == Listening,
		Waiting:          s == Waiting,
	}
}
