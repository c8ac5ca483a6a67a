// Package transport wraps an http.RoundTripper to carry the session's
// bearer token and transparently refresh-and-retry on an authorization
// failure. The retry happens at most once per original request.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eduhub/go-edu-client/authapi"
)

// TokenSource supplies credentials and a refresh operation. Implemented by
// session.Manager.
type TokenSource interface {
	AccessToken() (string, bool)
	HasRefreshToken() bool
	Refresh(ctx context.Context) error
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport injects "Authorization: Bearer" into outgoing requests and, on
// a 401 from any non-auth endpoint, performs exactly one refresh and one
// replay. Requests to the auth endpoints themselves pass through untouched.
type Transport struct {
	base   http.RoundTripper
	source TokenSource
	log    zerolog.Logger
}

// Option modifies a Transport.
type Option func(*Transport)

// WithBase sets the underlying RoundTripper (default http.DefaultTransport).
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		if base != nil {
			t.base = base
		}
	}
}

// WithLogger sets the transport's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Transport) {
		t.log = log
	}
}

// New creates a Transport over the given token source.
func New(source TokenSource, options ...Option) (*Transport, error) {
	if source == nil {
		return nil, fmt.Errorf("[transport.New] token source is required")
	}
	t := &Transport{
		base:   http.DefaultTransport,
		source: source,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// NewHTTPClient is a convenience wrapper returning an *http.Client whose
// requests are authenticated through the given source.
func NewHTTPClient(source TokenSource, timeout time.Duration, options ...Option) (*http.Client, error) {
	t, err := New(source, options...)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: t, Timeout: timeout}, nil
}

// RoundTrip implements http.RoundTripper. The incoming request is never
// mutated; clones carry the credentials.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if authapi.IsAuthPath(req.URL.Path) {
		return t.base.RoundTrip(req)
	}

	ctx := req.Context()
	accessToken, ok := t.source.AccessToken()
	if !ok && t.source.HasRefreshToken() {
		// No access token but a refresh token exists: refresh proactively
		// rather than sending a request guaranteed to 401.
		if err := t.source.Refresh(ctx); err != nil {
			t.log.Debug().Err(err).Msg("proactive refresh failed")
		} else {
			accessToken, ok = t.source.AccessToken()
		}
	}

	attempt := req.Clone(ctx)
	attempt.Header.Set("X-Request-ID", uuid.New().String())
	if ok {
		attempt.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || !t.source.HasRefreshToken() {
		return resp, nil
	}

	// One refresh, one replay. A second 401 from the replay is returned
	// as-is; this path never loops.
	if err := t.source.Refresh(ctx); err != nil {
		t.log.Debug().Err(err).Str("path", req.URL.Path).Msg("refresh after 401 failed")
		return resp, nil
	}
	newToken, ok := t.source.AccessToken()
	if !ok {
		return resp, nil
	}
	retry, err := cloneForRetry(req, attempt.Header.Get("X-Request-ID"))
	if err != nil {
		t.log.Debug().Err(err).Msg("request body not replayable, propagating original 401")
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+newToken)
	return t.base.RoundTrip(retry)
}

// cloneForRetry rebuilds the request with a fresh body. Requests whose
// body cannot be re-materialized are not retried.
func cloneForRetry(req *http.Request, requestID string) (*http.Request, error) {
	retry := req.Clone(req.Context())
	retry.Header.Set("X-Request-ID", requestID)
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body is not replayable")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	retry.Body = body
	return retry, nil
}
