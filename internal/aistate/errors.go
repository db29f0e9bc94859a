package aistate

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is the reason for using a nil *Store.
	ErrNotInitialized = errors.New("activity store not initialized")
	// ErrClosed is the reason for using a store after Close.
	ErrClosed = errors.New("activity store closed")
	// ErrInvalidState is returned for values outside the State enumeration.
	ErrInvalidState = errors.New("invalid activity state")
)

// UsageError reports a store used outside the scope it was established in.
// It is a wiring bug and is raised with panic rather than returned.
type UsageError struct {
	Op  string
	Err error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("aistate: %s: %v", e.Op, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageFault(op string, err error) {
	panic(&UsageError{Op: op, Err: err})
}
