// Package signal renders probe outcomes on the node's only human-visible
// output: a single LED line.
package signal

import "time"

// Outcome is the result of one probe cycle. It is recomputed every cycle,
// consumed by the signaler, and discarded.
type Outcome struct {
	TimeSyncOK bool
	SampleOK   bool
	UploadOK   bool
}

// Situation is the single condition the pattern scheme reports. When several
// conditions fail at once the most urgent one wins: an upload failure outranks
// a bad sample, which outranks nominal.
type Situation int

const (
	SituationOK Situation = iota
	SituationNoSensorData
	SituationUploadFailed
)

func (o Outcome) situation() Situation {
	switch {
	case !o.UploadOK:
		return SituationUploadFailed
	case !o.SampleOK:
		return SituationNoSensorData
	default:
		return SituationOK
	}
}

// Signaler renders an outcome on the LED until the deadline. Implementations
// recompute the remaining time after every readout pass, so the number of
// repetitions is whatever fits in the leftover period.
type Signaler interface {
	Signal(o Outcome, deadline time.Time)
}

// Line is a single digital output.
type Line interface {
	Set(on bool)
}

// Clock is the subset of timekeeping the signalers need. device.SystemClock
// satisfies it.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}
