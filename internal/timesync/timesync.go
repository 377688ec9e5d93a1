// Package timesync is the node's view of the time-synchronization client: a
// source of epoch timestamps that may not have converged yet.
package timesync

import "time"

// System reports the operating system clock. On a freshly booted node the OS
// clock starts near zero until NTP converges; the engine classifies such
// values as unsynced rather than rejecting the sample.
type System struct{}

func (System) EpochSeconds() int64 { return time.Now().Unix() }
