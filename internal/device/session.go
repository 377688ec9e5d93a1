package device

import (
	"log/slog"
	"net/http"
)

type sessionState int

const (
	// sessionFresh: no request has been issued yet.
	sessionFresh sessionState = iota
	// sessionBound: the underlying connection is (assumed) alive and bound to
	// boundURL.
	sessionBound
	// sessionNeedsReset: the connection must be torn down before the next
	// request. Set after identity resolution (the session still remembers the
	// lookup URL) and after transport-level failures.
	sessionNeedsReset
)

// session wraps the node's single long-lived HTTP client. The connection is
// deliberately left open between upload attempts to amortize the TLS
// handshake; it is torn down only through rebind.
type session struct {
	client   *http.Client
	state    sessionState
	boundURL string
	metrics  *Metrics
	log      *slog.Logger
}

func newSession(client *http.Client, metrics *Metrics, log *slog.Logger) *session {
	if client == nil {
		client = &http.Client{}
	}
	return &session{
		client:  client,
		state:   sessionFresh,
		metrics: metrics,
		log:     log,
	}
}

// ensure makes the session usable for requests to url, rebinding if it is
// fresh, stale, or bound elsewhere.
func (s *session) ensure(url string) {
	if s.state == sessionBound && s.boundURL == url {
		return
	}
	s.rebind(url)
}

// rebind drops any idle connections and binds the session to url. Every rebind
// counts as a connection open.
func (s *session) rebind(url string) {
	s.client.CloseIdleConnections()
	s.state = sessionBound
	s.boundURL = url
	s.metrics.connectionOpens.Add(1)
	s.log.Debug("session rebound", "url", url)
}

// markStale forces the next use to rebind.
func (s *session) markStale() {
	s.state = sessionNeedsReset
}
