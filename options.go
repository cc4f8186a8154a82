package lthread

import "time"

// config holds the resolved settings for a Scheduler.
type config struct {
	alarmInterval     time.Duration
	initialCapacity   int
	stackSize         int
	logger            Logger
	fatalHook         func(error)
}

const (
	defaultAlarmInterval   = 500 * time.Microsecond
	defaultInitialCapacity = initialHandleCapacity
	defaultStackSize       = 2 << 20 // 2 MiB, matching the original's mmap'd stack size
)

// Option configures a Scheduler at construction time.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (f optionFunc) apply(c *config) { f(c) }

// WithAlarmInterval sets the period of the preemption timer. The default
// is 500 microseconds, matching the original LTHREAD_ALARM_INTERVAL_NS.
func WithAlarmInterval(d time.Duration) Option {
	return optionFunc(func(c *config) { c.alarmInterval = d })
}

// WithInitialCapacity sets the handle table's initial slot capacity.
func WithInitialCapacity(n int) Option {
	return optionFunc(func(c *config) { c.initialCapacity = n })
}

// WithStackSize documents the per-thread stack budget. Go goroutines grow
// their stacks on demand and cannot be hard-capped the way the original's
// mmap'd regions were, so this does not bound memory safety the way it
// did in the C implementation; it is retained for API parity. The value
// is recorded in the scheduler's configuration and nothing else reads it.
func WithStackSize(bytes int) Option {
	return optionFunc(func(c *config) { c.stackSize = bytes })
}

// WithLogger installs a structured logger for scheduler diagnostics. The
// default logger discards all output.
func WithLogger(l Logger) Option {
	return optionFunc(func(c *config) {
		if l != nil {
			c.logger = l
		}
	})
}

// WithFatalHook overrides how the scheduler reacts to an unrecoverable
// platform error (timer/signal bring-up failure). The default hook logs
// and calls os.Exit; tests should install a hook that instead records the
// error and returns, since a SchedulerFaultError is otherwise fatal by
// design.
func WithFatalHook(hook func(error)) Option {
	return optionFunc(func(c *config) {
		if hook != nil {
			c.fatalHook = hook
		}
	})
}

// resolveOptions applies defaults, then each Option in order.
func resolveOptions(opts []Option) *config {
	c := &config{
		alarmInterval:   defaultAlarmInterval,
		initialCapacity: defaultInitialCapacity,
		stackSize:       defaultStackSize,
		logger:          nopLogger{},
		fatalHook:       defaultFatalHook,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.apply(c)
	}
	return c
}
