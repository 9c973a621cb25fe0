package httputil

import (
	"net/http"
	"time"

	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/logging"
	"github.com/emmanuelandyeze/tradeet-vendor-sub001/internal/metrics"
)

// transport injects the bearer token and request id, then logs and records
// metrics for the exchange.
type transport struct {
	next   http.RoundTripper
	client *Client
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())

	if token := t.client.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	ctx := req.Context()
	traceID := req.Header.Get(RequestIDHeader)
	if traceID == "" {
		traceID = logging.TraceIDFromContext(ctx)
	}
	if traceID == "" {
		traceID = logging.NewTraceID()
	}
	req.Header.Set(RequestIDHeader, traceID)
	ctx = logging.WithTraceID(ctx, traceID)

	done := metrics.RequestStarted()
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	done(req.Method, req.URL.Path, status, duration)
	t.client.logger.LogRequest(ctx, req.Method, req.URL.Path, status, duration)
	if err != nil {
		t.client.logger.WithContext(ctx).WithError(err).Debug("transport error")
	}

	return resp, err
}
