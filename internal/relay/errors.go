package relay

import (
	"errors"
	"fmt"
)

// ErrNotConfigured signals the channel or admin group setting is
// missing; the sender gets a configuration-pending notice.
var ErrNotConfigured = errors.New("channel or admin group is not configured")

// PlatformError wraps a failed messaging platform call.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform %s failed: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed durable store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
