package app

import (
	"sync"
	"time"
)

// Countdown is a cancellable once-per-second countdown. After each decrement the
// remaining seconds are reported through onTick; when they reach zero the ticking
// stops and onExpire fires exactly once. Remaining time never goes negative.
//
// At most one countdown runs per Countdown value: Start stops any previous run.
type Countdown struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewCountdown() *Countdown {
	return &Countdown{interval: time.Second}
}

// NewCountdownWithInterval is test-only for fast deterministic ticking.
func NewCountdownWithInterval(interval time.Duration) *Countdown {
	return &Countdown{interval: interval}
}

// Start begins a countdown from totalSeconds. Callbacks are invoked from the
// countdown's own goroutine. A totalSeconds of zero or less fires onExpire
// without ever invoking onTick.
func (c *Countdown) Start(totalSeconds int, onTick func(remaining int), onExpire func()) {
	c.mu.Lock()
	c.stopLocked()
	stop := make(chan struct{})
	c.stop = stop
	c.mu.Unlock()

	go c.run(totalSeconds, stop, onTick, onExpire)
}

// Stop cancels a running countdown. It is idempotent and safe to call when no
// countdown is running.
func (c *Countdown) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Countdown) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Countdown) run(remaining int, stop chan struct{}, onTick func(int), onExpire func()) {
	if remaining <= 0 {
		onExpire()
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			if onTick != nil {
				onTick(remaining)
			}
			if remaining <= 0 {
				onExpire()
				return
			}
		}
	}
}
