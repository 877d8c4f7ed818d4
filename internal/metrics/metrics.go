// Package metrics exposes Prometheus collectors for cover requests, renders
// and uploads.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covergen"

// Metrics groups the service collectors. A nil *Metrics is valid and records
// nothing, which keeps the CLI render path free of metric plumbing.
type Metrics struct {
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	renderDuration *prometheus.HistogramVec
	uploads        *prometheus.CounterVec
	rendersActive  prometheus.Gauge
}

// MustNew creates the collectors and registers them with reg. Registration
// errors panic, mirroring promauto, so duplicate wiring surfaces at startup.
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code.",
			},
			[]string{"route", "code"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		renderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Time spent composing and encoding a cover.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind", "status"},
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Object-store uploads by result.",
			},
			[]string{"result"},
		),
		rendersActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "renders_active",
				Help:      "Renders currently holding a concurrency slot.",
			},
		),
	}
	reg.MustRegister(m.requests, m.requestLatency, m.renderDuration, m.uploads, m.rendersActive)
	return m
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, code).Inc()
	m.requestLatency.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveRender records one render attempt of the given kind.
func (m *Metrics) ObserveRender(kind string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.renderDuration.WithLabelValues(kind, status(err)).Observe(d.Seconds())
}

// ObserveUpload records one upload attempt.
func (m *Metrics) ObserveUpload(err error) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(status(err)).Inc()
}

// RenderStarted and RenderFinished bracket a render holding a slot.
func (m *Metrics) RenderStarted() {
	if m == nil {
		return
	}
	m.rendersActive.Inc()
}

func (m *Metrics) RenderFinished() {
	if m == nil {
		return
	}
	m.rendersActive.Dec()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
