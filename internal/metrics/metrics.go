// Package metrics exposes Prometheus instruments for ranking lookups and
// leaderboard refreshes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

const namespace = "slippi_ranks"

type Metrics struct {
	registry *prometheus.Registry

	lookups           *prometheus.CounterVec
	lookupDuration    prometheus.Histogram
	leaderboardBuilds *prometheus.CounterVec
	lastRefresh       prometheus.Gauge
	rosterSize        prometheus.Gauge
}

// New registers every instrument on a private registry so tests can build as many
// instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		lookups: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Profile lookups by outcome",
		}, []string{"outcome"}),
		lookupDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Latency of a single profile lookup against the ranking service",
			Buckets:   prometheus.DefBuckets,
		}),
		leaderboardBuilds: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leaderboard_builds_total",
			Help:      "Leaderboard builds by outcome",
		}, []string{"outcome"}),
		lastRefresh: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "leaderboard_last_refresh_unixtime",
			Help:      "Unix time of the last successful leaderboard build",
		}),
		rosterSize: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_size",
			Help:      "Number of connect codes on the leaderboard roster",
		}),
	}
}

// ObserveLookup records one lookup; outcome is "ok" or a lookup error kind.
func (m *Metrics) ObserveLookup(outcome string, took time.Duration) {
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveLeaderboardBuild(outcome string, size int, at time.Time) {
	m.leaderboardBuilds.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.lastRefresh.Set(float64(at.Unix()))
		m.rosterSize.Set(float64(size))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

var Module = fx.Provide(New)
