// Package metrics provides Prometheus metrics for the planner.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studyplan"

// Metrics owns a private registry so several planners (and tests) never
// collide on the default one. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// ExportsTotal counts calendar documents generated.
	ExportsTotal *prometheus.CounterVec
	// TogglesTotal counts progress toggles by resulting state.
	TogglesTotal *prometheus.CounterVec
	// ResetsTotal counts progress resets.
	ResetsTotal prometheus.Counter
	// RemindersTotal counts reminder deliveries by status.
	RemindersTotal *prometheus.CounterVec
	// ProgressPercent is the last computed completion percentage.
	ProgressPercent prometheus.Gauge
	// HTTPRequestsTotal counts API requests by route and status code.
	HTTPRequestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ExportsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exports_total",
				Help:      "Total number of calendar exports",
			},
			[]string{"source"},
		),
		TogglesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_toggles_total",
				Help:      "Total number of progress toggles",
			},
			[]string{"state"},
		),
		ResetsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "progress_resets_total",
				Help:      "Total number of progress resets",
			},
		),
		RemindersTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_total",
				Help:      "Total number of daily reminders by delivery status",
			},
			[]string{"status"},
		),
		ProgressPercent: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "progress_percent",
				Help:      "Share of completed days, 0-100",
			},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordExport records a generated calendar. source is "http" or "cli".
func (m *Metrics) RecordExport(source string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(source).Inc()
}

// RecordToggle records a toggle that left the day done or not.
func (m *Metrics) RecordToggle(done bool) {
	if m == nil {
		return
	}
	state := "undone"
	if done {
		state = "done"
	}
	m.TogglesTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) RecordReset() {
	if m == nil {
		return
	}
	m.ResetsTotal.Inc()
}

// RecordReminder records a reminder delivery; status is "sent" or "failed".
func (m *Metrics) RecordReminder(status string) {
	if m == nil {
		return
	}
	m.RemindersTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetProgress(percent int) {
	if m == nil {
		return
	}
	m.ProgressPercent.Set(float64(percent))
}

func (m *Metrics) RecordRequest(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
