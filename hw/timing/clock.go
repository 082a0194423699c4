// Package timing implements the delay primitives used to pace port
// effects: a loop-calibrated delay and a timer-backed one, both expressed in
// machine cycles of an assumed oscillator and blocking on an injectable
// Clock.
package timing

import (
	"sync"
	"time"
)

// A Clock tells the time and blocks the caller.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// VirtualClock is a Clock whose time only advances when Sleep or Advance
// are called. Sleep returns immediately. It's safe for concurrent use.
type VirtualClock struct {
	mu      sync.Mutex
	now     time.Time
	slept   time.Duration
	nsleeps int
	onSleep []func(now time.Time)
}

// NewVirtualClock returns a VirtualClock starting at start.
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{now: start}
}

func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances the clock by d then calls the OnSleep hooks.
func (c *VirtualClock) Sleep(d time.Duration) {
	c.mu.Lock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	c.slept += d
	c.nsleeps++
	now := c.now
	hooks := c.onSleep
	c.mu.Unlock()

	for _, f := range hooks {
		f(now)
	}
}

// Advance moves the clock forward without counting as a sleep.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// OnSleep registers f to be called after each Sleep, with the new time. This
// lets tests change the outside world while the caller is blocked.
func (c *VirtualClock) OnSleep(f func(now time.Time)) {
	c.mu.Lock()
	c.onSleep = append(c.onSleep, f)
	c.mu.Unlock()
}

// Slept returns the total slept duration and the number of Sleep calls.
func (c *VirtualClock) Slept() (time.Duration, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept, c.nsleeps
}
