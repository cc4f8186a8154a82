package lthread

import "sync/atomic"

// maskLevel is the state of the preemption-signal mask (spec §4.D:
// mask()/unmask() must be idempotent and must not lose a signal that
// fires while masked).
type maskLevel uint32

const (
	// unmasked: a fire is delivered immediately.
	unmasked maskLevel = iota
	// masked: a fire is recorded but deferred.
	masked
	// pendingFire: masked, and a fire arrived while masked; the next
	// unmask must deliver it immediately instead of merely clearing the
	// mask.
	pendingFire
)

// maskState is a lock-free mask flag with cache-line padding, grounded on
// the original's BLOCK_SIGNAL/UNBLOCK_SIGNAL macros, which wrapped
// sigprocmask. Here the "signal" is a timerfd expiration read by a
// goroutine (Linux) or a ticker-driven callback (Darwin/Windows); either
// way the masking discipline is identical.
type maskState struct {
	_ [64]byte
	v atomic.Uint32
	_ [60]byte
}

func newMaskState() *maskState {
	return &maskState{}
}

// mask transitions unmasked -> masked. It is a no-op if already masked or
// pendingFire.
func (m *maskState) mask() {
	m.v.CompareAndSwap(uint32(unmasked), uint32(masked))
}

// unmask clears the mask. It reports whether a fire had arrived while
// masked (pendingFire), in which case the caller must invoke its fire
// handler immediately, exactly as a deferred signal would be delivered
// the instant sigprocmask unblocks it.
func (m *maskState) unmask() bool {
	if m.v.CompareAndSwap(uint32(pendingFire), uint32(unmasked)) {
		return true
	}
	m.v.CompareAndSwap(uint32(masked), uint32(unmasked))
	return false
}

// recordFire is called by the preemption source when the timer fires. It
// reports whether the fire should be delivered immediately (the mask was
// not held).
func (m *maskState) recordFire() bool {
	if m.v.CompareAndSwap(uint32(unmasked), uint32(unmasked)) {
		return true
	}
	m.v.CompareAndSwap(uint32(masked), uint32(pendingFire))
	return false
}

func (m *maskState) isMasked() bool {
	l := maskLevel(m.v.Load())
	return l == masked || l == pendingFire
}
