// Package metrics exposes Prometheus collectors for the alert intake path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alert_intake"

// Outcome labels for requests_total.
const (
	OutcomeCreated        = "created"
	OutcomeFiltered       = "filtered"
	OutcomeDuplicate      = "duplicate"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeForbidden      = "forbidden"
	OutcomeNotFound       = "not_found"
	OutcomeInvalidPayload = "invalid_payload"
	OutcomeError          = "error"
)

// Recorder is what the intake service reports to. A nil *Intake is valid and
// records nothing.
type Recorder interface {
	Request(outcome string)
	FilterDecision(admitted bool)
	PipelineDuration(d time.Duration)
}

type Intake struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	decisions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// New creates the collectors on a fresh registry, together with Go runtime
// and process collectors.
func New() *Intake {
	m := &Intake{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Alert webhook requests by outcome",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_decisions_total",
			Help:      "Filter engine decisions",
		}, []string{"decision"}), // admitted, rejected
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent processing authenticated alerts",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.decisions,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Intake) Request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Intake) FilterDecision(admitted bool) {
	if m == nil {
		return
	}
	decision := "rejected"
	if admitted {
		decision = "admitted"
	}
	m.decisions.WithLabelValues(decision).Inc()
}

func (m *Intake) PipelineDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Intake) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry is exposed for tests.
func (m *Intake) Registry() *prometheus.Registry {
	return m.registry
}
