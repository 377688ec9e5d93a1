package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fillBatch(b *Batch, n int) {
	for k := 0; k < n; k++ {
		b.Append(Sample{Time: int64(k + 1), TemperatureC: 20, HumidityPct: 50})
	}
}

func TestUploaderSuccess(t *testing.T) {
	var gotContentType string
	var gotDoc uploadDocument
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotDoc); err != nil {
			t.Errorf("decode upload: %v", err)
		}
	}))
	defer srv.Close()

	dev := newTestDevice(11)
	dev.AdoptIdentity("bedroom")
	fillBatch(dev.Batch, 3)

	u := NewUploader(dev, srv.URL, "hunter2", discardLogger())
	if err := u.Upload(context.Background(), dev.Batch); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if dev.Batch.Len() != 0 {
		t.Errorf("batch Len() = %d after success; want 0", dev.Batch.Len())
	}
	if got := dev.Metrics.UploadFailures(); got != 0 {
		t.Errorf("UploadFailures() = %d; want 0", got)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", gotContentType)
	}
	if gotDoc.Password != "hunter2" || gotDoc.SensorName != "bedroom" {
		t.Errorf("document auth/name = %q/%q", gotDoc.Password, gotDoc.SensorName)
	}
	if len(gotDoc.SensorData) != 3 {
		t.Errorf("sensordata length = %d; want 3", len(gotDoc.SensorData))
	}
}

func TestUploaderNon200RetainsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dev := newTestDevice(11)
	dev.AdoptIdentity("bedroom")
	fillBatch(dev.Batch, 2)

	u := NewUploader(dev, srv.URL, "hunter2", discardLogger())
	if err := u.Upload(context.Background(), dev.Batch); err == nil {
		t.Fatal("Upload returned nil error on HTTP 500")
	}

	if dev.Batch.Len() != 2 {
		t.Errorf("batch Len() = %d after failure; want 2 (retained)", dev.Batch.Len())
	}
	if got := dev.Metrics.UploadFailures(); got != 1 {
		t.Errorf("UploadFailures() = %d; want 1", got)
	}
	if dev.session.state != sessionBound {
		t.Error("session reset after HTTP-level failure; the connection is still usable")
	}
}

func TestUploaderTransportFailure(t *testing.T) {
	dev := newTestDevice(11)
	dev.AdoptIdentity("bedroom")
	fillBatch(dev.Batch, 1)

	// Nothing listens on port 1.
	u := NewUploader(dev, "http://127.0.0.1:1", "hunter2", discardLogger())
	if err := u.Upload(context.Background(), dev.Batch); err == nil {
		t.Fatal("Upload returned nil error on transport failure")
	}

	if dev.Batch.Len() != 1 {
		t.Errorf("batch Len() = %d after transport failure; want 1 (retained)", dev.Batch.Len())
	}
	if got := dev.Metrics.UploadFailures(); got != 1 {
		t.Errorf("UploadFailures() = %d; want 1", got)
	}
	if dev.session.state != sessionNeedsReset {
		t.Error("session not marked for reset after transport failure")
	}
}

func TestUploaderSessionReuseAndRebind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	dev := newTestDevice(11)
	dev.AdoptIdentity("bedroom")
	u := NewUploader(dev, srv.URL, "hunter2", discardLogger())

	fillBatch(dev.Batch, 1)
	if err := u.Upload(context.Background(), dev.Batch); err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	fillBatch(dev.Batch, 1)
	if err := u.Upload(context.Background(), dev.Batch); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if got := dev.Metrics.ConnectionOpens(); got != 1 {
		t.Errorf("ConnectionOpens() = %d after two uploads; want 1 (session reused)", got)
	}

	// A stale session must be re-established exactly once on the next upload.
	dev.session.markStale()
	fillBatch(dev.Batch, 1)
	if err := u.Upload(context.Background(), dev.Batch); err != nil {
		t.Fatalf("third Upload: %v", err)
	}
	if got := dev.Metrics.ConnectionOpens(); got != 2 {
		t.Errorf("ConnectionOpens() = %d after reset; want 2", got)
	}
}
