package lthread

import "time"

// Status is the lifecycle state of a logical thread descriptor.
type Status uint32

const (
	// Created is the state of a thread that has been allocated but never
	// run.
	Created Status = iota
	// Running is the state of the thread currently executing on the
	// single scheduled context.
	Running
	// Ready is the state of a thread that is queued and eligible to be
	// selected by the scheduler.
	Ready
	// Sleeping is the state of a thread waiting for a wake deadline.
	Sleeping
	// Blocked is the state of a thread waiting on an external unblock.
	Blocked
	// Done is the state of a thread whose entry function has returned.
	Done
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Created:
		return "created"
	case Running:
		return "running"
	case Ready:
		return "ready"
	case Sleeping:
		return "sleeping"
	case Blocked:
		return "blocked"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Handle is an opaque, process-wide reference to a logical thread. It is
// stable across the thread's lifetime and is rejected by the handle table
// once the slot it names has been reused (see handles.go).
//
// The zero Handle never names a live thread.
type Handle struct {
	index      uint32
	generation uint32
}

// descriptor is the per-thread control block. It is owned exclusively by
// the handle table slot that holds it; the run queue only ever links to
// it, never copies or frees it (invariant: the run queue is a non-owning
// view over live descriptors).
type descriptor struct {
	handle Handle
	status Status

	entry func(any) any
	arg   any
	ret   any

	wakeAt time.Time

	rv *rendezvous

	// link is the next descriptor in the run queue ring. It is zero value
	// (nil) when the descriptor is not currently queued. Only runqueue.go
	// may read or write this field.
	link *descriptor
}
