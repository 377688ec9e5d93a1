// Package device implements the node's sampling, batching, uploading and
// scheduling engine.
package device

import (
	"log/slog"
	"net/http"
)

// Device owns all mutable node state for the lifetime of the process: the
// batch buffer, the lifetime counters, the resolved identity and the shared
// upload session. Everything runs on the scheduler's goroutine.
type Device struct {
	Batch   *Batch
	Metrics *Metrics

	identity string
	session  *session
	log      *slog.Logger
}

// NewDevice builds a device around the given HTTP client. Passing nil uses a
// default client.
func NewDevice(client *http.Client, backlogLimit int, metrics *Metrics, log *slog.Logger) *Device {
	return &Device{
		Batch:   NewBatch(backlogLimit),
		Metrics: metrics,
		session: newSession(client, metrics, log),
		log:     log,
	}
}

// AdoptIdentity records the name assigned by the naming service. It is set
// once at bootstrap and read-only afterwards.
func (d *Device) AdoptIdentity(identity string) {
	d.identity = identity
	d.log.Info("identity adopted", "identity", identity)
}

func (d *Device) Identity() string { return d.identity }
