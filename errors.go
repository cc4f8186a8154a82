package lthread

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the public primitives. Match these with
// errors.Is against the errors returned from Init, Create, Join, Destroy,
// and Sleep.
var (
	// ErrInvalidHandle is returned when a Handle does not name a live
	// thread, either because it was never issued or because the slot it
	// named has since been reused.
	ErrInvalidHandle = errors.New("lthread: invalid handle")

	// ErrAlreadyJoined is returned by Join when the named thread has
	// already been joined or destroyed.
	ErrAlreadyJoined = errors.New("lthread: thread already joined")

	// ErrNotRunning is returned by Sleep when the scheduler has no
	// current thread, as before Init.
	ErrNotRunning = errors.New("lthread: scheduler not running")

	// ErrAlreadyRunning is returned by Init when called on a scheduler
	// that has already been started.
	ErrAlreadyRunning = errors.New("lthread: scheduler already running")
)

// SchedulerFaultError reports an unrecoverable failure in the scheduler's
// platform bring-up (preemption timer setup), matching the
// fatal-error policy: such failures abort rather than propagate as a
// normal return value, since the scheduler cannot make forward progress
// without the preemption source it depends on.
type SchedulerFaultError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *SchedulerFaultError) Error() string {
	return fmt.Sprintf("lthread: fatal error during %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for use with errors.Is and
// errors.As.
func (e *SchedulerFaultError) Unwrap() error {
	return e.Cause
}

// WrapError wraps cause with message, preserving it for errors.Is/As.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
