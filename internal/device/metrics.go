package device

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the node's process-lifetime counters. They only ever go up; a
// device restart is the only reset. Reads may come from the metrics listener's
// goroutine, hence the atomics.
type Metrics struct {
	samplesAccepted atomic.Uint64
	uploadFailures  atomic.Uint64
	connectionOpens atomic.Uint64
}

func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) SamplesAccepted() uint64 { return m.samplesAccepted.Load() }
func (m *Metrics) UploadFailures() uint64  { return m.uploadFailures.Load() }
func (m *Metrics) ConnectionOpens() uint64 { return m.connectionOpens.Load() }

// Collectors returns prometheus views over the counters for the optional debug
// listener.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "sensornode_samples_accepted_total",
			Help: "Samples accepted into the upload batch.",
		}, func() float64 { return float64(m.SamplesAccepted()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "sensornode_upload_failures_total",
			Help: "Batch upload attempts that did not return HTTP 200.",
		}, func() float64 { return float64(m.UploadFailures()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "sensornode_connection_opens_total",
			Help: "Times the HTTPS session was established or re-established.",
		}, func() float64 { return float64(m.ConnectionOpens()) }),
	}
}
