package lthread

import (
	"sync"
	"time"
)

var (
	defaultOnce sync.Once
	defaultSch  *Scheduler
)

// Default returns the process-wide default Scheduler, constructing and
// initializing it on first use. This mirrors the original library's
// global-function surface (lthread_init/lthread_create/...), for callers
// who want a single implicit scheduler rather than managing their own
// *Scheduler value.
func Default() *Scheduler {
	defaultOnce.Do(func() {
		defaultSch = New()
		if err := defaultSch.Init(); err != nil {
			defaultSch.cfg.fatalHook(err)
		}
	})
	return defaultSch
}

// Init initializes the default scheduler. Most callers should prefer
// Default(), which initializes lazily; Init also returns the
// initialization error to its caller, after the scheduler's fatal hook
// has been invoked with it. Init returns ErrAlreadyRunning once the
// default scheduler has been built, whether by Init or by Default.
func Init() error {
	err := ErrAlreadyRunning
	defaultOnce.Do(func() {
		defaultSch = New()
		err = defaultSch.Init()
	})
	return err
}

// Create spawns a new thread on the default scheduler.
func Create(entry func(any) any, arg any) (Handle, error) {
	return Default().Create(entry, arg)
}

// Join waits for a thread created on the default scheduler.
func Join(h Handle) (any, error) {
	return Default().Join(h)
}

// Destroy forcibly removes a thread from the default scheduler.
func Destroy(h Handle) error {
	return Default().Destroy(h)
}

// Yield surrenders the calling thread's turn on the default scheduler.
func Yield() {
	Default().Yield()
}

// Sleep suspends the calling thread on the default scheduler.
func Sleep(d time.Duration) error {
	return Default().Sleep(d)
}

// Block opens a critical section on the default scheduler by masking its
// preemption signal.
func Block() {
	Default().Block()
}

// Unblock closes the critical section opened by Block.
func Unblock() {
	Default().Unblock()
}
