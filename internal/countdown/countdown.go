// Package countdown implements the inactivity timer that ends a session.
//
// A Countdown is a handle on one running timer. Reset stops a handle and
// returns a new one; callers must keep the returned handle.
package countdown

import (
	"sync"
	"time"

	"github.com/mo0hamed-shoaib/Bankist-Dashboard/internal/format"
)

// Config controls the countdown length and pacing.
type Config struct {
	Timeout   time.Duration // total length, 10m by default
	Tick      time.Duration // decrement step, 1s by default
	HideDelay time.Duration // wait between reaching zero and OnExpire
}

// DefaultConfig mirrors the demo: ten minutes, one-second ticks, one more
// second before the session is hidden.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Minute,
		Tick:      time.Second,
		HideDelay: time.Second,
	}
}

// ticks is the number of steps between start and zero.
func (c Config) ticks() int {
	if c.Tick <= 0 {
		return 0
	}
	return int(c.Timeout / c.Tick)
}

// Hooks receive countdown events. Both are optional and are called without
// any lock held.
type Hooks struct {
	OnTick   func(remaining int)
	OnExpire func()
}

// State of a countdown handle.
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Countdown is a single running timer.
type Countdown struct {
	cfg   Config
	hooks Hooks

	mu        sync.Mutex
	remaining int
	state     State
	expired   bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start begins a countdown. The starting value is reported to OnTick
// before Start returns.
func Start(cfg Config, hooks Hooks) *Countdown {
	c := &Countdown{
		cfg:       cfg,
		hooks:     hooks,
		remaining: cfg.ticks(),
		state:     Running,
		done:      make(chan struct{}),
	}
	c.notify(c.remaining)

	c.wg.Add(1)
	go c.run()
	return c
}

// Reset stops old (which may be nil) and starts a fresh countdown with the
// same configuration and hooks. The returned handle replaces old. A handle
// that already reached zero is returned as is so its expiry still fires.
func Reset(old *Countdown) *Countdown {
	if old == nil || old.Expired() {
		return old
	}
	old.Stop()
	return Start(old.cfg, old.hooks)
}

func (c *Countdown) run() {
	defer c.wg.Done()

	if c.cfg.ticks() == 0 {
		c.expire()
		return
	}

	ticker := time.NewTicker(c.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.state != Running {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			if remaining <= 0 {
				c.state = Idle
			}
			c.mu.Unlock()

			c.notify(remaining)
			if remaining <= 0 {
				c.expire()
				return
			}
		}
	}
}

// expire moves to Idle and fires OnExpire after the hide delay unless the
// handle is stopped first.
func (c *Countdown) expire() {
	c.mu.Lock()
	c.state = Idle
	c.remaining = 0
	c.expired = true
	c.mu.Unlock()

	hide := time.NewTimer(c.cfg.HideDelay)
	defer hide.Stop()

	select {
	case <-c.done:
		return
	case <-hide.C:
	}
	if c.hooks.OnExpire != nil {
		c.hooks.OnExpire()
	}
}

func (c *Countdown) notify(remaining int) {
	if c.hooks.OnTick != nil {
		c.hooks.OnTick(remaining)
	}
}

// Stop cancels the ticking and any pending expiry. It is safe to call more
// than once and from within the hooks.
func (c *Countdown) Stop() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.state = Idle
		c.mu.Unlock()
		close(c.done)
	})
}

// Wait blocks until the countdown goroutine has exited.
func (c *Countdown) Wait() {
	if c == nil {
		return
	}
	c.wg.Wait()
}

// Remaining returns the number of ticks left.
func (c *Countdown) Remaining() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Seconds returns the time left rounded down to whole seconds.
func (c *Countdown) Seconds() int {
	if c == nil {
		return 0
	}
	return int(time.Duration(c.Remaining()) * c.cfg.Tick / time.Second)
}

// State reports whether the countdown is still ticking.
func (c *Countdown) State() State {
	if c == nil {
		return Idle
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Expired reports whether the countdown reached zero. It stays true while
// the hide delay runs and after OnExpire.
func (c *Countdown) Expired() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// String renders the time left as MM:SS.
func (c *Countdown) String() string {
	return format.Countdown(c.Seconds())
}
