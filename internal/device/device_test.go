package device

import (
	"log/slog"
	"time"
)

// fakeClock advances only when something sleeps, so timing logic runs
// instantly and deterministically.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestDevice(limit int) *Device {
	return NewDevice(nil, limit, NewMetrics(), discardLogger())
}
