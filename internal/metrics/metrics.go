// Package metrics holds the Prometheus collectors of a site generator
// process. Each Metrics owns its registry so tests and several App instances
// never share global state.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pigeon"

// Metrics groups the collectors updated during builds.
type Metrics struct {
	registry *prometheus.Registry

	buildsTotal    *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	articlesTotal  *prometheus.CounterVec
	actionsTotal   *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	lastBuildTime  prometheus.Gauge
	lastBuildPages prometheus.Gauge
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "builds_total",
				Help:      "Total number of site builds by status",
			},
			[]string{"status"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "build_duration_seconds",
				Help:      "Duration of complete site builds in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
		articlesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_total",
				Help:      "Total number of article builds by status",
			},
			[]string{"status"},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "actions_total",
				Help:      "Total number of action executions by action and status",
			},
			[]string{"action", "status"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "engine",
				Name:      "action_duration_seconds",
				Help:      "Duration of single action executions in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"action"},
		),
		lastBuildTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_build_timestamp_seconds",
				Help:      "Unix time of the last successful build",
			},
		),
		lastBuildPages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_build_articles",
				Help:      "Number of articles written by the last successful build",
			},
		),
	}

	m.registry.MustRegister(
		m.buildsTotal,
		m.buildDuration,
		m.articlesTotal,
		m.actionsTotal,
		m.actionDuration,
		m.lastBuildTime,
		m.lastBuildPages,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveAction records one engine action. Its signature matches
// pigeon.Observer.
func (m *Metrics) ObserveAction(_ context.Context, action string, elapsed time.Duration, err error) {
	m.actionsTotal.WithLabelValues(action, status(err)).Inc()
	m.actionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// ObserveArticle records the outcome of one article build.
func (m *Metrics) ObserveArticle(err error) {
	m.articlesTotal.WithLabelValues(status(err)).Inc()
}

// ObserveBuild records a complete site build.
func (m *Metrics) ObserveBuild(elapsed time.Duration, articles int, err error) {
	m.buildsTotal.WithLabelValues(status(err)).Inc()
	m.buildDuration.Observe(elapsed.Seconds())
	if err == nil {
		m.lastBuildTime.SetToCurrentTime()
		m.lastBuildPages.Set(float64(articles))
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
