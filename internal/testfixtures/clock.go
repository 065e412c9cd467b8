package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manual time source injected as a service's now function, so
// last_update stamps are predictable.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// NowFunc returns c.Now, or time.Now for a nil clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Advance moves the clock by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// AdvanceDays moves the clock by whole calendar days.
func (c *Clock) AdvanceDays(days int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, days)
	return c.now
}

// Today is the clock date in the stored ISO layout.
func (c *Clock) Today() string {
	return c.Now().Format(isoDate)
}

// Date formats the clock date shifted by days, handy for internship ranges.
func (c *Clock) Date(days int) string {
	return c.Now().AddDate(0, 0, days).Format(isoDate)
}

const isoDate = "2006-01-02"
