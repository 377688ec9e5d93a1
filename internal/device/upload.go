package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Wire format expected by the collector. Field names and order are fixed by
// the receiving end; do not rename.
type wireSample struct {
	Time         int64   `json:"time"`
	TemperatureC float64 `json:"temperature_C"`
	HumidityPerc float64 `json:"humidity_perc"`
}

type uploadDocument struct {
	Password   string       `json:"clowny-cleartext-password"`
	SensorName string       `json:"sensorname"`
	SensorData []wireSample `json:"sensordata"`
}

func buildDocument(password, sensorName string, samples []Sample) uploadDocument {
	data := make([]wireSample, 0, len(samples))
	for _, s := range samples {
		data = append(data, wireSample{
			Time:         s.Time,
			TemperatureC: s.TemperatureC,
			HumidityPerc: s.HumidityPct,
		})
	}
	return uploadDocument{
		Password:   password,
		SensorName: sensorName,
		SensorData: data,
	}
}

// Uploader pushes the batch to the collector over the device's shared session.
type Uploader struct {
	dev      *Device
	url      string
	password string
	log      *slog.Logger
}

func NewUploader(dev *Device, url, password string, log *slog.Logger) *Uploader {
	return &Uploader{
		dev:      dev,
		url:      url,
		password: password,
		log:      log,
	}
}

// Upload serializes the batch and POSTs it to the collector. On HTTP 200 the
// batch is cleared; on any failure it is retained for the next cycle and the
// failure counter increments. Transport-level failures additionally mark the
// session for reset, since the connection can no longer be trusted.
func (u *Uploader) Upload(ctx context.Context, batch *Batch) error {
	u.dev.session.ensure(u.url)

	doc := buildDocument(u.password, u.dev.Identity(), batch.Samples())
	body, err := json.Marshal(doc)
	if err != nil {
		u.dev.Metrics.uploadFailures.Add(1)
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.url, bytes.NewReader(body))
	if err != nil {
		u.dev.Metrics.uploadFailures.Add(1)
		return fmt.Errorf("post batch: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.dev.session.client.Do(req)
	if err != nil {
		u.dev.Metrics.uploadFailures.Add(1)
		u.dev.session.markStale()
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused for the next attempt.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		u.dev.Metrics.uploadFailures.Add(1)
		return fmt.Errorf("post batch: status %d", resp.StatusCode)
	}

	u.log.Info("batch uploaded", "samples", batch.Len())
	batch.Clear()
	return nil
}
