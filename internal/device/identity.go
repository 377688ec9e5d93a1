package device

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Resolver obtains the device's stable identity from the naming service. The
// node cannot operate without a name, so Resolve retries forever; the only way
// out without an identity is cancelling the context.
type Resolver struct {
	dev      *Device
	identURL string
	mac      string
	period   time.Duration
	clock    Clock
	log      *slog.Logger
}

func NewResolver(dev *Device, identURL, mac string, period time.Duration, clock Clock, log *slog.Logger) *Resolver {
	return &Resolver{
		dev:      dev,
		identURL: identURL,
		mac:      mac,
		period:   period,
		clock:    clock,
		log:      log,
	}
}

// Resolve blocks until the naming service answers with HTTP 200, sleeping one
// full sample period between attempts so an unreachable service is not
// hammered. On success the shared session is marked stale: it is still bound
// to the lookup URL and must be rebound before the first data upload.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	for {
		identity, err := r.lookup(ctx)
		if err == nil {
			r.dev.session.markStale()
			return identity, nil
		}
		r.log.Warn("identity lookup failed, retrying", "error", err, "backoff", r.period)
		r.clock.Sleep(r.period)
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

func (r *Resolver) lookup(ctx context.Context) (string, error) {
	r.dev.session.ensure(r.identURL)

	u := fmt.Sprintf("%s?macaddr=%s", r.identURL, url.QueryEscape(r.mac))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("identity lookup: %w", err)
	}

	resp, err := r.dev.session.client.Do(req)
	if err != nil {
		r.dev.session.markStale()
		return "", fmt.Errorf("identity lookup: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.dev.session.markStale()
		return "", fmt.Errorf("identity lookup: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity lookup: status %d", resp.StatusCode)
	}
	return string(body), nil
}
