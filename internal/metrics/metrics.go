package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the client's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight API requests.",
		},
	)

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests issued.",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "route"},
	)

	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by target state.",
		},
		[]string{"state"},
	)

	staleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "session",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because the session changed while they were in flight.",
		},
	)

	storeSwitches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradeet_vendor",
			Subsystem: "stores",
			Name:      "switches_total",
			Help:      "Active store switch attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		requestsInFlight,
		requests,
		requestDuration,
		sessionTransitions,
		staleResponses,
		storeSwitches,
	)
}

// Handler exposes the registry, for embedding hosts that serve metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns the matching
// completion callback.
func RequestStarted() func(method, path string, status int, duration time.Duration) {
	requestsInFlight.Inc()
	return func(method, path string, status int, duration time.Duration) {
		requestsInFlight.Dec()
		RecordRequest(method, path, status, duration)
	}
}

// RecordRequest records one completed API request. Status 0 means no
// response was received.
func RecordRequest(method, path string, status int, duration time.Duration) {
	if duration <= 0 {
		duration = time.Millisecond
	}
	route := CanonicalRoute(path)
	method = strings.ToUpper(method)
	requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordTransition records a session state change.
func RecordTransition(state string) {
	sessionTransitions.WithLabelValues(state).Inc()
}

// RecordStaleResponse records a discarded in-flight result.
func RecordStaleResponse() {
	staleResponses.Inc()
}

// RecordStoreSwitch records a store switch attempt.
func RecordStoreSwitch(outcome string) {
	storeSwitches.WithLabelValues(outcome).Inc()
}

// CanonicalRoute collapses id segments so label cardinality stays bounded.
// "/orders/store/abc123" becomes "/orders/store/:id".
func CanonicalRoute(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	for i, p := range parts {
		if i > 0 && isIdentifier(p) {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// isIdentifier treats segments containing a digit as ids. Route words in the
// API are purely alphabetic with dashes.
func isIdentifier(segment string) bool {
	return strings.ContainsAny(segment, "0123456789")
}
