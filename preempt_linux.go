//go:build linux

package lthread

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// linuxPreempt drives the preemption source from a Linux timerfd, the
// same direct-syscall style the wakeup mechanism in this codebase's
// ancestor used for its eventfd (golang.org/x/sys/unix, no cgo). A
// dedicated goroutine blocks reading the timerfd — the nearest portable
// analogue, from user space, to the original's dedicated real-time
// signal firing into a handler — and calls deliver() once per expiry,
// honoring whatever mask level basePreempt currently holds.
type linuxPreempt struct {
	basePreempt
	fd   int
	done chan struct{}
}

func newPlatformPreemptSource(interval time.Duration) (preemptSource, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("lthread: timerfd_create: %w", &SchedulerFaultError{Op: "timerfd_create", Cause: err})
	}
	spec := &unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, spec, nil); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("lthread: timerfd_settime: %w", &SchedulerFaultError{Op: "timerfd_settime", Cause: err})
	}

	p := &linuxPreempt{
		basePreempt: newBasePreempt(),
		fd:          fd,
		done:        make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func (p *linuxPreempt) run() {
	var buf [8]byte
	for {
		n, err := unix.Read(p.fd, buf[:])
		select {
		case <-p.done:
			return
		default:
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n != 8 {
			continue
		}
		expirations := binary.LittleEndian.Uint64(buf[:])
		for i := uint64(0); i < expirations; i++ {
			p.deliver()
		}
	}
}

func (p *linuxPreempt) stop() {
	close(p.done)
	_ = unix.Close(p.fd)
}
