// Package metrics exposes engine activity as Prometheus collectors. The
// Prometheus type satisfies the engine's Metrics interface structurally, so
// the engine stays free of any instrumentation dependency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus records run and rule counters on its own registry, so embedding
// applications and tests never fight over the global default registry.
type Prometheus struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	steps    *prometheus.HistogramVec
	rules    *prometheus.CounterVec
}

// NewPrometheus builds and registers the collector set.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_runs_total",
				Help: "Total engine runs by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwise_run_duration_seconds",
				Help:    "Wall-clock duration of engine runs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		steps: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stepwise_run_steps",
				Help:    "Steps recorded per engine run",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"operation"},
		),
		rules: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stepwise_rule_applications_total",
				Help: "Rule applications by operation and rule",
			},
			[]string{"operation", "rule"},
		),
	}
	p.registry.MustRegister(p.runs, p.duration, p.steps, p.rules)
	return p
}

// RunCompleted records one finished run.
func (p *Prometheus) RunCompleted(op, outcome string, steps int, elapsed time.Duration) {
	p.runs.WithLabelValues(op, outcome).Inc()
	p.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	p.steps.WithLabelValues(op).Observe(float64(steps))
}

// RuleApplied records one successful rule application.
func (p *Prometheus) RuleApplied(op, rule string) {
	p.rules.WithLabelValues(op, rule).Inc()
}

// Handler serves the scrape endpoint for this collector set.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
