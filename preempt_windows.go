//go:build windows

package lthread

import "time"

// windowsPreempt mirrors darwinPreempt: a time.Ticker goroutine stands in
// for the timerfd reader Linux uses, since Windows has no timerfd.
type windowsPreempt struct {
	basePreempt
	ticker *time.Ticker
	done   chan struct{}
}

func newPlatformPreemptSource(interval time.Duration) (preemptSource, error) {
	p := &windowsPreempt{
		basePreempt: newBasePreempt(),
		ticker:      time.NewTicker(interval),
		done:        make(chan struct{}),
	}
	go p.run()
	return p, nil
}

func (p *windowsPreempt) run() {
	for {
		select {
		case <-p.ticker.C:
			p.deliver()
		case <-p.done:
			return
		}
	}
}

func (p *windowsPreempt) stop() {
	p.ticker.Stop()
	close(p.done)
}
