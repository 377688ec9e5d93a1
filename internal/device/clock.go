package device

import "time"

// Clock abstracts wall time and blocking sleep. All waiting in the node (the
// identity-lookup backoff, the idle stretch between probes) goes through it so
// tests can run against a simulated clock instead of real delays.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// SystemClock returns the real wall clock. It also satisfies signal.Clock.
func SystemClock() Clock { return systemClock{} }
