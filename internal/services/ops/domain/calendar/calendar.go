// Package calendar holds the campaign date.
package calendar

import (
	"sync"
	"time"
)

// Clock is the campaign's current day. Times are truncated to midnight UTC.
type Clock struct {
	mu    sync.Mutex
	today time.Time
}

// NewClock starts the campaign on start.
func NewClock(start time.Time) *Clock {
	return &Clock{today: Day(start)}
}

// Today returns the current campaign date.
func (c *Clock) Today() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.today
}

// Advance moves the clock forward exactly one day and returns the new date.
func (c *Clock) Advance() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = c.today.AddDate(0, 0, 1)
	return c.today
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
