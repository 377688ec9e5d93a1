package device

// MinValidEpoch is the oldest epoch timestamp treated as a synchronized clock.
// A node that boots before NTP converges reports seconds-since-boot, so
// anything earlier than 2001-09-09 is classified as an unsynced clock.
const MinValidEpoch = 1_000_000_000

// Sample is one accepted sensor reading. Samples are immutable once stored;
// they exist from acceptance until the batch is cleared.
type Sample struct {
	Time         int64
	TemperatureC float64
	HumidityPct  float64
}

// TimeSource yields the current epoch time in seconds. Values below
// MinValidEpoch indicate the time-sync client has not converged yet.
type TimeSource interface {
	EpochSeconds() int64
}

// SensorReader reads one temperature/humidity pair. A driver that cannot
// produce a valid reading reports NaN for either value; that is its only
// failure signal.
type SensorReader interface {
	Read() (temperatureC, humidityPct float64)
}
