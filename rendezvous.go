package lthread

// rendezvous is the context-switch primitive. The original C
// implementation captured and restored raw machine context with
// getcontext/setcontext inside a signal handler; a Go goroutine already
// owns a safely suspendable, independently-stacked execution context, so
// capture/restore here is a handshake over a pair of unbuffered channels
// rather than a register save.
//
// build_initial (spec §4.A) corresponds to spawnThread: the goroutine is
// started immediately but blocks on its first park() before it executes
// any entry code, exactly mirroring a freshly makecontext'd, not-yet-run
// thread.
type rendezvous struct {
	resume chan struct{}
	parked chan struct{}
}

func newRendezvous() *rendezvous {
	return &rendezvous{
		resume: make(chan struct{}),
		parked: make(chan struct{}),
	}
}

// park suspends the calling goroutine until the scheduler calls
// resumeAndWait. This is the capture side of the context switch: the
// caller blocks here with its Go stack intact and resumes exactly where
// it left off. It is used both for the thread's very first suspension
// (before entry ever runs) and every subsequent voluntary switch.
func (r *rendezvous) park() {
	<-r.resume
}

// resumeAndWait unblocks a goroutine previously suspended in park. The
// unbuffered send only completes once the other goroutine's receive runs,
// which is all the ordering guarantee the scheduler needs: by the time
// resumeAndWait returns, the resumed goroutine is the one actively
// executing. This is the restore side of the context switch.
func (r *rendezvous) resumeAndWait() {
	r.resume <- struct{}{}
}

// awaitParked blocks until the owning goroutine has reached its first
// park point and is about to wait on resume. The scheduler calls this
// once, immediately after spawning a new thread, to ensure the
// trampoline has reached a safe suspension point before the descriptor
// is pushed onto the run queue as Ready. Unlike park, this signal is
// only ever sent once per descriptor, by spawnThread's goroutine closure
// — later parks do not re-signal it.
func (r *rendezvous) awaitParked() {
	<-r.parked
}

// spawnThread starts the trampoline goroutine for d. The goroutine
// reports that it has reached its first suspension point, then parks,
// and does not execute entry until the scheduler performs the first
// resumeAndWait, matching the CREATED state's contract: allocated but
// not yet run.
func spawnThread(d *descriptor, trampoline func(*descriptor)) {
	d.rv = newRendezvous()
	go func() {
		d.rv.parked <- struct{}{}
		d.rv.park()
		trampoline(d)
	}()
	d.rv.awaitParked()
}
