package app

import (
	"fmt"
	"sync"
	"time"
)

// warningThreshold is the remaining-seconds mark at which the countdown
// enters its presentational warning sub-state.
const warningThreshold = 300

// CountdownState is the lifecycle of the deadline timer.
type CountdownState int

const (
	CountdownIdle CountdownState = iota
	CountdownRunning
	CountdownStopped
	CountdownExpired
)

// Countdown drives the quiz deadline with a repeating one-second tick.
// Both terminal transitions (manual stop and expiry) go through the state
// check under the mutex, so a tick racing a manual submit fires the expiry
// callback at most once and the tick loop is always cancelled.
type Countdown struct {
	mu        sync.Mutex
	state     CountdownState
	remaining int
	startedAt time.Time

	now      func() time.Time
	interval time.Duration
	stop     chan struct{}

	onTick   func(remaining int, warning bool)
	onExpire func()
}

// NewCountdown builds an idle countdown. The callbacks are invoked from the
// tick goroutine with no internal lock held.
func NewCountdown(onTick func(remaining int, warning bool), onExpire func()) *Countdown {
	return newCountdownWithClock(time.Now, time.Second, onTick, onExpire)
}

// newCountdownWithClock allows deterministic time and ticking in tests.
func newCountdownWithClock(now func() time.Time, interval time.Duration, onTick func(remaining int, warning bool), onExpire func()) *Countdown {
	return &Countdown{
		now:      now,
		interval: interval,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start records the start instant and begins ticking. Only valid from Idle.
func (c *Countdown) Start(seconds int) {
	c.mu.Lock()
	if c.state != CountdownIdle {
		c.mu.Unlock()
		return
	}
	c.state = CountdownRunning
	c.remaining = seconds
	c.startedAt = c.now()
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	go c.run(stop)
}

func (c *Countdown) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !c.tick() {
				return
			}
		case <-stop:
			return
		}
	}
}

// tick advances the countdown by one second. It reports whether the loop
// should keep running.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	if c.state != CountdownRunning {
		c.mu.Unlock()
		return false
	}
	c.remaining--
	remaining := c.remaining
	expired := remaining <= 0
	if expired {
		c.state = CountdownExpired
	}
	c.mu.Unlock()

	if c.onTick != nil {
		c.onTick(remaining, remaining <= warningThreshold)
	}
	if expired {
		if c.onExpire != nil {
			c.onExpire()
		}
		return false
	}
	return true
}

// StopManually cancels the tick loop from Running and reports whether this
// call won the terminal transition. Any other state is a no-op.
func (c *Countdown) StopManually() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CountdownRunning {
		return false
	}
	c.state = CountdownStopped
	close(c.stop)
	return true
}

// Elapsed is the wall-clock time since Start, independent of the
// remaining-seconds counter. Zero before Start.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startedAt.IsZero() {
		return 0
	}
	return c.now().Sub(c.startedAt)
}

// Remaining returns the current remaining-seconds counter.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// State returns the countdown lifecycle state.
func (c *Countdown) State() CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// FormatClock renders a number of seconds as zero-padded MM:SS. Negative
// values clamp to 00:00; minutes keep growing past 99 rather than rolling
// over into hours.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
