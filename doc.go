// Package lthread implements cooperatively scheduled user-space threads
// multiplexed onto a single scheduled goroutine, in the style of a
// signal-driven green-thread library.
//
// # Architecture
//
// A [Scheduler] owns a handle table (the set of live thread descriptors),
// a run queue (an intrusive ring over those descriptors), and a
// preemption source (a periodic timer whose ticks wake expired sleepers;
// it does not interrupt the running thread). Each logical thread is backed
// by a real goroutine parked on a rendezvous channel pair; switching
// threads is a channel handoff rather than raw register save/restore,
// since the Go runtime already owns safe suspension of a goroutine's
// stack.
//
// # Platform Support
//
// The preemption source is implemented per-OS:
//   - Linux: a monotonic timerfd read by a dedicated goroutine, which
//     reports each expiration to the scheduler.
//   - Darwin and Windows: a ticker-driven goroutine invoking the same
//     internal entry point the Linux timerfd reader calls, since neither
//     platform exposes a timerfd equivalent via golang.org/x/sys.
//
// On every platform "masking" the preemption source means setting an
// in-process atomic flag that defers tick delivery; no OS signal is used.
//
// # Thread Safety
//
// A *Scheduler is driven by exactly one tick loop at a time; Create,
// Join, Destroy, Yield, Sleep, Block, and Unblock are intended to be
// called only from within a thread the Scheduler itself is running,
// mirroring the original single-kernel-thread model. The package-level
// functions operate against a lazily-constructed default Scheduler for
// callers that want the original library's global-function surface.
//
// # Execution Model
//
// Go gives library code no way to interrupt a running goroutine that
// never calls into the runtime or a blocking primitive, so this package
// cannot reproduce true asynchronous preemption of CPU-bound code; that
// capability belongs to the Go runtime's own async-preempt mechanism,
// which is not exposed to callers. Scheduling is therefore cooperative:
// a thread keeps running until it calls Yield, Sleep, or Join, or until
// its entry function returns. Block does not switch threads; it only masks
// the preemption source. The periodic preemption source still fires
// at a fixed interval (500 microseconds by default), but its surviving
// job is sleep-wheel housekeeping — promoting threads whose Sleep
// deadline has elapsed from Sleeping back to Ready so the next voluntary
// switch point picks them up.
//
// # Usage
//
//	sched := lthread.New()
//	if err := sched.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer sched.Shutdown()
//
//	h, err := sched.Create(func(arg any) any {
//	    return 42
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := sched.Join(h)
//
// # Error Types
//
//   - [ErrInvalidHandle]: a Handle does not name a live thread
//   - [ErrAlreadyJoined]: Join called twice on the same thread
//   - [ErrNotRunning] / [ErrAlreadyRunning]: scheduler lifecycle misuse
//   - [SchedulerFaultError]: an unrecoverable platform bring-up failure
package lthread
