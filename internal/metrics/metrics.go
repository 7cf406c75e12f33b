// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "research_assistant"

// Metrics groups the service collectors around a private registry.
type Metrics struct {
	registry *prometheus.Registry

	llmRequests  *prometheus.CounterVec
	llmDuration  *prometheus.HistogramVec
	llmTokens    *prometheus.CounterVec
	documents    *prometheus.CounterVec
	sessionGauge prometheus.GaugeFunc
}

// New creates and registers the collectors. sessionCount may be nil.
func New(sessionCount func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request latency by operation.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"operation"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens consumed by direction (input, output).",
		}, []string{"direction"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Uploaded documents by format and outcome.",
		}, []string{"format", "outcome"}),
	}
	reg.MustRegister(m.llmRequests, m.llmDuration, m.llmTokens, m.documents)

	if sessionCount != nil {
		m.sessionGauge = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}, func() float64 { return float64(sessionCount()) })
		reg.MustRegister(m.sessionGauge)
	}

	return m
}

// ObserveLLM records one LLM call.
func (m *Metrics) ObserveLLM(operation string, elapsed time.Duration, inputTokens, outputTokens int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.llmRequests.WithLabelValues(operation, outcome).Inc()
	m.llmDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if inputTokens > 0 {
		m.llmTokens.WithLabelValues("input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokens.WithLabelValues("output").Add(float64(outputTokens))
	}
}

// ObserveDocument records one processed upload.
func (m *Metrics) ObserveDocument(format string, err error) {
	if m == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.documents.WithLabelValues(format, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
