package lthread

import "time"

// preemptSource is the per-OS preemption-signal interface (spec §4.D).
// It delivers periodic fire notifications at roughly alarmInterval,
// honoring mask()/unmask() so a fire that arrives while masked is
// deferred rather than dropped or delivered reentrantly.
type preemptSource interface {
	// fires is signaled once per delivered (non-deferred) tick. It is a
	// buffered channel of size 1: at most one pending fire is ever
	// queued, matching the original's single dedicated real-time signal
	// (repeated raises while already pending collapse into one).
	fires() <-chan struct{}

	// mask defers delivery until unmask.
	mask()

	// unmask resumes delivery, immediately signaling fires if a tick
	// arrived while masked.
	unmask()

	// isMasked reports whether the source is currently masked.
	isMasked() bool

	// stop permanently halts the timer and releases its platform
	// resources.
	stop()
}

// newPreemptSource builds the platform preemption source. Implementations
// live in preempt_linux.go, preempt_darwin.go, and preempt_windows.go.
func newPreemptSource(interval time.Duration) (preemptSource, error) {
	return newPlatformPreemptSource(interval)
}

// basePreempt is the shared scaffolding every platform implementation
// embeds: the mask bookkeeping and the fire channel plumbing are
// identical across platforms, only the origin of "something fired" (a
// timerfd reader goroutine on Linux, a ticker goroutine elsewhere) differs.
type basePreempt struct {
	mstate *maskState
	fireCh chan struct{}
}

func newBasePreempt() basePreempt {
	return basePreempt{
		mstate: newMaskState(),
		fireCh: make(chan struct{}, 1),
	}
}

func (b *basePreempt) fires() <-chan struct{} { return b.fireCh }

func (b *basePreempt) mask() { b.mstate.mask() }

func (b *basePreempt) isMasked() bool { return b.mstate.isMasked() }

func (b *basePreempt) unmask() {
	if b.mstate.unmask() {
		b.deliver()
	}
}

// deliver is called by the platform-specific timer callback whenever the
// interval elapses. It records the fire against the mask state and, if
// not masked, pushes a non-blocking notification onto fireCh.
func (b *basePreempt) deliver() {
	if !b.mstate.recordFire() {
		return
	}
	select {
	case b.fireCh <- struct{}{}:
	default:
	}
}
