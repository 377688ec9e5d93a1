package signal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(0, 0)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

type segment struct {
	on  bool
	dur time.Duration
}

// traceLine records the LED waveform as (level, duration) segments, merging
// writes that do not change the level. This is the reproducible fixture the
// blink timing is asserted against.
type traceLine struct {
	clock *fakeClock
	level bool
	since time.Time
	segs  []segment
}

func newTraceLine(clock *fakeClock) *traceLine {
	return &traceLine{clock: clock, since: clock.Now()}
}

func (l *traceLine) Set(on bool) {
	if on == l.level {
		return
	}
	now := l.clock.Now()
	if now.After(l.since) {
		l.segs = append(l.segs, segment{on: l.level, dur: now.Sub(l.since)})
	}
	l.level = on
	l.since = now
}

// flush closes the trailing segment. Call once after the signaler returns.
func (l *traceLine) flush() {
	now := l.clock.Now()
	if now.After(l.since) {
		l.segs = append(l.segs, segment{on: l.level, dur: now.Sub(l.since)})
		l.since = now
	}
}

func (l *traceLine) render() []byte {
	var b strings.Builder
	for _, s := range l.segs {
		state := "off"
		if s.on {
			state = "on"
		}
		fmt.Fprintf(&b, "%s %s\n", state, s.dur)
	}
	return []byte(b.String())
}

func (l *traceLine) pulses() int {
	n := 0
	for _, s := range l.segs {
		if s.on {
			n++
		}
	}
	return n
}

func (l *traceLine) pulsesOf(d time.Duration) int {
	n := 0
	for _, s := range l.segs {
		if s.on && s.dur == d {
			n++
		}
	}
	return n
}
