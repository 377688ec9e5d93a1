package signal

import (
	"log/slog"
	"time"
)

// slot is the duration of one bit in a pattern: LED on for a 1, off for a 0.
const slot = 200 * time.Millisecond

// patterns maps each situation to its 20-slot display sequence. The mapping is
// data, not control flow, so it can be inspected and tested on its own.
var patterns = map[Situation]string{
	SituationOK:           "10100000000000000000",
	SituationNoSensorData: "11001100110000000000",
	SituationUploadFailed: "10101010101010101010",
}

// defaultPattern is shown for situations with no mapping. Half on, half off:
// visibly wrong without being mistakable for any real code.
const defaultPattern = "11111111110000000000"

func patternFor(s Situation) string {
	if p, ok := patterns[s]; ok {
		return p
	}
	return defaultPattern
}

// PatternSignaler plays one fixed bit sequence per display window, repeating
// the window until the sample period is used up.
type PatternSignaler struct {
	line  Line
	clock Clock
	log   *slog.Logger
}

func NewPatternSignaler(line Line, clock Clock, log *slog.Logger) *PatternSignaler {
	return &PatternSignaler{line: line, clock: clock, log: log}
}

func (p *PatternSignaler) Signal(o Outcome, deadline time.Time) {
	s := o.situation()
	pat := patternFor(s)
	if _, ok := patterns[s]; !ok {
		p.log.Warn("no pattern for situation, using fallback", "situation", int(s))
	}
	for p.clock.Now().Before(deadline) {
		p.play(pat)
	}
	p.line.Set(false)
}

func (p *PatternSignaler) play(pat string) {
	for _, bit := range pat {
		p.line.Set(bit == '1')
		p.clock.Sleep(slot)
	}
}
