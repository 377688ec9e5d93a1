package device

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/jelson/sensornode/internal/signal"
)

// BatchUploader pushes the current batch to the collector. *Uploader is the
// production implementation.
type BatchUploader interface {
	Upload(ctx context.Context, batch *Batch) error
}

// Feed receives every accepted sample, for local integrations that want live
// data without polling the collector. Optional.
type Feed interface {
	Publish(identity string, s Sample) error
}

// Scheduler drives one probe per sample period, forever: acquire a sample,
// upload when the batch is big enough, then hand the idle remainder of the
// period to the signaler.
type Scheduler struct {
	dev       *Device
	timeSrc   TimeSource
	sensor    SensorReader
	uploader  BatchUploader
	signaler  signal.Signaler
	feed      Feed
	clock     Clock
	period    time.Duration
	batchSize int
	log       *slog.Logger
}

type SchedulerOptions struct {
	TimeSource TimeSource
	Sensor     SensorReader
	Uploader   BatchUploader
	Signaler   signal.Signaler
	Feed       Feed
	Clock      Clock
	Period     time.Duration
	BatchSize  int
}

func NewScheduler(dev *Device, opts SchedulerOptions, log *slog.Logger) *Scheduler {
	return &Scheduler{
		dev:       dev,
		timeSrc:   opts.TimeSource,
		sensor:    opts.Sensor,
		uploader:  opts.Uploader,
		signaler:  opts.Signaler,
		feed:      opts.Feed,
		clock:     opts.Clock,
		period:    opts.Period,
		batchSize: opts.BatchSize,
		log:       log,
	}
}

// Run loops until ctx is cancelled. Each pass probes once, signals the outcome
// until the next probe is due, then sleeps off whatever sliver of the period
// the signaler left unused.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		due := s.clock.Now().Add(s.period)
		outcome := s.probe(ctx)
		s.signaler.Signal(outcome, due)
		if rest := due.Sub(s.clock.Now()); rest > 0 {
			s.clock.Sleep(rest)
		}
	}
}

// probe runs one synchronous acquire/upload pass and reports what happened.
func (s *Scheduler) probe(ctx context.Context) signal.Outcome {
	outcome := signal.Outcome{TimeSyncOK: true, SampleOK: true, UploadOK: true}

	epoch := s.timeSrc.EpochSeconds()
	if epoch < MinValidEpoch {
		outcome.TimeSyncOK = false
		s.log.Warn("clock not synced", "epoch", epoch)
	}

	temp, humidity := s.sensor.Read()
	if math.IsNaN(temp) || math.IsNaN(humidity) {
		outcome.SampleOK = false
		s.log.Warn("sensor returned invalid reading")
	} else {
		smp := Sample{Time: epoch, TemperatureC: temp, HumidityPct: humidity}
		if s.dev.Batch.Append(smp) {
			s.dev.Metrics.samplesAccepted.Add(1)
			s.publish(smp)
		} else {
			// Should be unreachable: the overflow check below keeps the batch
			// under its limit. Drop the sample rather than grow past capacity.
			s.log.Error("batch full, dropping sample", "len", s.dev.Batch.Len())
		}
	}

	if s.dev.Batch.Len() >= s.batchSize && s.dev.Batch.Len() > 0 {
		if err := s.uploader.Upload(ctx, s.dev.Batch); err != nil {
			outcome.UploadOK = false
			s.log.Warn("upload failed, batch retained", "error", err, "samples", s.dev.Batch.Len())
		}
	}

	// Capacity beats completeness: once the backlog has survived enough failed
	// uploads to fill the buffer, it is discarded wholesale.
	if s.dev.Batch.Len() >= s.dev.Batch.Limit() {
		s.log.Warn("backlog at capacity after upload attempt, discarding",
			"samples", s.dev.Batch.Len())
		s.dev.Batch.Clear()
	}

	return outcome
}

func (s *Scheduler) publish(smp Sample) {
	if s.feed == nil {
		return
	}
	if err := s.feed.Publish(s.dev.Identity(), smp); err != nil {
		s.log.Warn("live feed publish failed", "error", err)
	}
}
