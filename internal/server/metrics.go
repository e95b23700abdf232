package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tartampluch/go-quickevent/internal/config"
)

// metrics lives on its own registry so several servers (tests) can coexist.
type metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	duration    prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: config.MetricsNamespace,
		Name:      config.MetricResolutions,
		Help:      config.MetricHelpResolution,
	}, []string{config.MetricLabelOutcome})

	m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: config.MetricsNamespace,
		Name:      config.MetricDuration,
		Help:      config.MetricHelpDuration,
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	m.registry.MustRegister(
		m.resolutions,
		m.duration,
		collectors.NewGoCollector(),
	)

	// Pre-create every outcome so the series exist before the first request.
	for _, o := range []string{config.OutcomeOK, config.OutcomeRejected, config.OutcomeFailed} {
		m.resolutions.WithLabelValues(o)
	}
	return m
}

func (m *metrics) observe(outcome string, started time.Time) {
	m.resolutions.WithLabelValues(outcome).Inc()
	m.duration.Observe(time.Since(started).Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
