package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestResolverRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if _, err := w.Write([]byte("bedroom")); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	dev := newTestDevice(11)
	clock := newFakeClock()
	period := 60 * time.Second
	r := NewResolver(dev, srv.URL, "aa:bb:cc:dd:ee:ff", period, clock, discardLogger())

	identity, err := r.Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity != "bedroom" {
		t.Errorf("identity = %q; want %q", identity, "bedroom")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d; want 3", attempts)
	}
	if len(clock.sleeps) != 2 {
		t.Fatalf("sleeps = %v; want exactly 2 backoff sleeps", clock.sleeps)
	}
	for i, d := range clock.sleeps {
		if d != period {
			t.Errorf("sleep[%d] = %v; want one full sample period (%v)", i, d, period)
		}
	}
	if dev.session.state != sessionNeedsReset {
		t.Error("session not marked for reset after identity resolution")
	}
}

func TestResolverSendsMACAddress(t *testing.T) {
	var gotMAC string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMAC = r.URL.Query().Get("macaddr")
		if _, err := w.Write([]byte("porch")); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	dev := newTestDevice(11)
	r := NewResolver(dev, srv.URL, "aa:bb:cc:dd:ee:ff", time.Second, newFakeClock(), discardLogger())

	if _, err := r.Resolve(context.Background()); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if gotMAC != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("macaddr = %q; want device MAC", gotMAC)
	}
	if got := dev.Metrics.ConnectionOpens(); got != 1 {
		t.Errorf("ConnectionOpens() = %d; want 1 for the lookup bind", got)
	}
}

func TestResolverStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dev := newTestDevice(11)
	r := NewResolver(dev, srv.URL, "aa:bb:cc:dd:ee:ff", time.Second, newFakeClock(), discardLogger())

	if _, err := r.Resolve(ctx); err == nil {
		t.Fatal("Resolve returned nil error on cancelled context")
	}
}
