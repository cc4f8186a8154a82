package lthread

import (
	"sync"
	"time"
)

// Scheduler is a single, process-local lthread runtime: one handle table,
// one run queue, one preemption source. Exactly one logical thread is
// ever actually executing at a time; every other live thread is a
// goroutine parked on its rendezvous, waiting to be resumed.
//
// A *Scheduler is not safe for concurrent Create/Join/Destroy/Yield/
// Sleep/Block/Unblock calls from more than one logical thread's
// goroutine at once for the same reason the original was not reentrant
// from more than one signal context: these primitives mutate the run
// queue and handle table. mu serializes that mutation; it is the
// in-process stand-in for the original's BLOCK_SIGNAL/UNBLOCK_SIGNAL
// critical section.
type Scheduler struct {
	cfg   *config
	table *handleTable
	queue runQueue
	pre   preemptSource

	mu      sync.Mutex
	main    *descriptor
	current *descriptor

	started bool
	closed  chan struct{}
}

// New constructs a Scheduler. It does not start the preemption timer;
// call Init for that.
func New(opts ...Option) *Scheduler {
	cfg := resolveOptions(opts)
	return &Scheduler{
		cfg:   cfg,
		table: newHandleTableWithCapacity(cfg.initialCapacity),
	}
}

// Init brings the scheduler up: it allocates the descriptor representing
// the calling goroutine itself (the original's LTHREAD_MAIN_THREAD,
// handle 1000000) and starts the preemption timer. Init must be called
// from the goroutine that will act as the initial logical thread; that
// goroutine is free to call Create, Join, Yield, Sleep, and Block
// afterward exactly as any other lthread would.
func (s *Scheduler) Init() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.main = &descriptor{status: Running, rv: newRendezvous()}
	s.table.allocate(s.main)
	s.queue.initWith(s.main)
	s.current = s.main
	s.closed = make(chan struct{})
	s.mu.Unlock()

	pre, err := newPreemptSource(s.cfg.alarmInterval)
	if err != nil {
		fault := &SchedulerFaultError{Op: "preempt source init", Cause: err}
		s.cfg.fatalHook(fault)
		return fault
	}
	s.pre = pre

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go s.tickLoop()
	return nil
}

// Shutdown stops the preemption timer. It does not destroy any remaining
// threads; callers are expected to Join or Destroy them first.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.closed)
	s.mu.Unlock()
	if s.pre != nil {
		s.pre.stop()
	}
}

// tickLoop is the periodic housekeeping goroutine. Per the preemption
// scope note in this package's documentation, its job is limited to
// sleep-wheel promotion: any SLEEPING descriptor whose deadline has
// elapsed is made READY so the next voluntary schedule point picks it up.
func (s *Scheduler) tickLoop() {
	for {
		select {
		case <-s.closed:
			return
		case <-s.pre.fires():
			s.promoteExpiredSleepers()
		}
	}
}

func (s *Scheduler) promoteExpiredSleepers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.empty() {
		return
	}
	now := time.Now()
	start := s.queue.current
	d := start
	for {
		if d.status == Sleeping && !d.wakeAt.After(now) {
			d.status = Ready
		}
		d = d.link
		if d == start {
			break
		}
	}
}

// Create allocates a new thread running entry(arg) and links it into the
// run queue as READY, mirroring lthread_create: the new descriptor is
// spawned and parked at its first checkpoint, then queued behind the
// caller.
func (s *Scheduler) Create(entry func(any) any, arg any) (Handle, error) {
	d := &descriptor{status: Created, entry: entry, arg: arg}

	s.mu.Lock()
	h := s.table.allocate(d)
	s.mu.Unlock()

	spawnThread(d, s.trampoline)

	s.mu.Lock()
	d.status = Ready
	s.queue.pushTail(d)
	s.mu.Unlock()

	return h, nil
}

// trampoline is the body every spawned goroutine runs after its first
// park, equivalent to lthread_run/lthread_stack_start: it waits to be
// scheduled, runs entry once, records the return value, marks the
// descriptor DONE, and hands control back to the scheduler.
func (s *Scheduler) trampoline(d *descriptor) {
	d.ret = d.entry(d.arg)
	d.status = Done
	s.switchFrom(d)
}

// switchFrom is the voluntary schedule point shared by Yield, Sleep,
// and trampoline-on-return. It advances the run queue past d
// (removing it first if d is no longer schedulable) and resumes whatever
// descriptor is selected next, mirroring the handler's bump_queue +
// status-switch loop (spec §4.E steps 3-5), just invoked cooperatively
// instead of from a signal handler.
func (s *Scheduler) switchFrom(d *descriptor) {
	s.mu.Lock()
	remove := d.status == Done || d.status == Blocked
	s.queue.advance(remove)

	var next *descriptor
	for {
		if s.queue.empty() {
			next = nil
			break
		}
		cand := s.queue.current
		switch cand.status {
		case Ready, Created:
			cand.status = Running
			next = cand
		case Sleeping:
			if !cand.wakeAt.After(time.Now()) {
				cand.status = Running
				next = cand
			} else {
				s.queue.advance(false)
				continue
			}
		case Done, Blocked:
			s.queue.advance(true)
			continue
		default:
			s.cfg.logger.Warn().
				Str("status", cand.status.String()).
				Msg("lthread: invariant violation: unexpected descriptor status in run queue")
			s.queue.advance(false)
			continue
		}
		break
	}
	s.current = next
	s.mu.Unlock()

	if next == nil || next == d {
		return
	}
	// Wake next first, then park d: there is a brief window where both
	// goroutines are runnable, but d touches no shared state after this
	// point other than parking, so the single-logical-thread invariant
	// holds from the next scheduling decision onward.
	next.rv.resumeAndWait()
	if d.status != Done {
		d.rv.park()
	}
}

// Join blocks the calling thread until h's entry function has returned,
// then returns its result and frees h. Join may only be called once per
// handle; a second call returns ErrAlreadyJoined.
func (s *Scheduler) Join(h Handle) (any, error) {
	s.mu.Lock()
	d, err := s.table.lookup(h)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	for {
		s.mu.Lock()
		done := d.status == Done
		s.mu.Unlock()
		if done {
			break
		}
		s.Yield()
	}

	ret := d.ret
	s.mu.Lock()
	_ = s.table.deallocate(h)
	s.mu.Unlock()
	return ret, nil
}

// Destroy forcibly removes h from the run queue and frees its handle,
// regardless of its current status.
func (s *Scheduler) Destroy(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.table.lookup(h)
	if err != nil {
		return err
	}
	s.queue.remove(d)
	return s.table.deallocate(h)
}

// Yield surrenders the calling thread's turn, becoming READY and
// resuming the next schedulable thread in ring order. Yield is a no-op
// while the calling thread holds a Block/Unblock critical section: the
// whole point of that critical section is that the caller is guaranteed
// not to be interleaved with any other thread, so an explicit Yield
// inside one must not switch away.
func (s *Scheduler) Yield() {
	if s.pre.isMasked() {
		return
	}
	d := s.current
	if d == nil {
		return
	}
	s.mu.Lock()
	if d.status == Running {
		d.status = Ready
	}
	s.mu.Unlock()
	s.switchFrom(d)
}

// Sleep suspends the calling thread for at least d, yielding to other
// threads in the meantime. Like Yield, Sleep is a no-op while masked: the
// call returns immediately without suspending and without switching away,
// preserving the Block/Unblock critical-section guarantee.
func (s *Scheduler) Sleep(d time.Duration) error {
	cur := s.current
	if cur == nil {
		return ErrNotRunning
	}
	if s.pre.isMasked() {
		return nil
	}
	s.mu.Lock()
	cur.status = Sleeping
	cur.wakeAt = time.Now().Add(d)
	s.mu.Unlock()
	s.switchFrom(cur)
	return nil
}

// Block masks the preemption signal, opening a critical section in which
// the calling thread is guaranteed not to be interleaved with any other
// thread. It does not suspend the caller — the BLOCKED status is
// reserved for future synchronization objects and is never set by this
// primitive (the source this package reimplements under-uses BLOCKED the
// same way; see the package-level design notes). The call returns
// immediately; matching code runs straight through to Unblock.
func (s *Scheduler) Block() {
	s.pre.mask()
}

// Unblock closes the critical section opened by Block, unmasking the
// preemption signal. A tick that arrived while masked is delivered
// immediately.
func (s *Scheduler) Unblock() {
	s.pre.unmask()
}

// Current returns the Handle of the calling thread, if any.
func (s *Scheduler) Current() (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Handle{}, false
	}
	return s.current.handle, true
}
