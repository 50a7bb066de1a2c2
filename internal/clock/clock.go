// Package clock abstracts the time source used by the detection engine.
//
// Deadlines are compared against Now. The real clock returns time.Now,
// which carries a monotonic reading, so wall-clock jumps do not shorten or
// stretch a settle window. Tests and recording replay use Manual.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Manual is a Clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu      sync.Mutex
	current time.Time
}

func NewManual(initial time.Time) *Manual {
	return &Manual{current: initial}
}

func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to t unless t is earlier than the current time.
// Recordings can carry slightly out-of-order timestamps; time never runs backwards here.
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	if t.After(c.current) {
		c.current = t
	}
	c.mu.Unlock()
}
