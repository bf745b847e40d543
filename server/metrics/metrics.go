// Package metrics holds the prometheus collectors for the service.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Chat request outcomes.
const (
	OutcomeOK              = "ok"
	OutcomeMalformed       = "malformed"
	OutcomeInvalidMessages = "invalid_messages"
	OutcomeEmptyMessages   = "empty_messages"
	OutcomeUnauthorized    = "unauthorized"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeMisconfigured   = "misconfigured"
)

// Metrics bundles the service collectors around a private registry.
type Metrics struct {
	registry *prometheus.Registry

	ChatRequests   *prometheus.CounterVec
	StreamDuration prometheus.Histogram
	StreamTokens   prometheus.Histogram
	PromptOps      *prometheus.CounterVec
	LoginAttempts  *prometheus.CounterVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := &Metrics{
		registry: registry,
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptdeck",
			Name:      "chat_requests_total",
			Help:      "Chat completion requests by outcome.",
		}, []string{"outcome"}),
		StreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "promptdeck",
			Name:      "chat_stream_duration_seconds",
			Help:      "Wall-clock duration of completed completion streams.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		StreamTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "promptdeck",
			Name:      "chat_stream_total_tokens",
			Help:      "Total token usage per completed completion stream.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}),
		PromptOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptdeck",
			Name:      "prompt_store_ops_total",
			Help:      "System prompt store operations by op and status.",
		}, []string{"op", "status"}),
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "promptdeck",
			Name:      "login_attempts_total",
			Help:      "Login attempts by status.",
		}, []string{"status"}),
	}

	registry.MustRegister(m.ChatRequests, m.StreamDuration, m.StreamTokens, m.PromptOps, m.LoginAttempts)
	return m
}

// Handler exposes the registry for the /metrics route.
func (m *Metrics) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
