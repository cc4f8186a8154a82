//go:build darwin

package lthread

import "time"

// darwinPreempt drives the preemption source from a time.Ticker. Darwin
// has no timerfd equivalent exposed through golang.org/x/sys the way
// Linux does, so the fire is produced by a ticker goroutine calling the
// same deliver() entry point the Linux timerfd reader calls; the
// mask/unmask contract is identical to the Linux implementation.
type darwinPreempt struct {
	basePreempt
	ticker *time.Ticker
	done   chan struct{}
}

func newPlatformPreemptSource(interval time.Duration) (preemptSource, error) {
	p := &darwinPreempt{
		basePreempt: newBasePreempt(),
		ticker:      time.NewTicker(interval),
		done:        make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func (p *darwinPreempt) run() {
	for {
		select {
		case <-p.ticker.C:
			p.deliver()
		case <-p.done:
			return
		}
	}
}

func (p *darwinPreempt) stop() {
	p.ticker.Stop()
	close(p.done)
}
