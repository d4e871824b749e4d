// Package metrics provides Prometheus metrics for the catalog engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reload outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Metrics holds the catalog metrics.
type Metrics struct {
	// Reloads
	ReloadsTotal   *prometheus.CounterVec
	ReloadDuration prometheus.Histogram
	LastReload     prometheus.Gauge

	// Snapshot
	Entries      prometheus.Gauge
	DuplicateIDs prometheus.Gauge
	Version      prometheus.Gauge

	// Queries
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	QueryResults  prometheus.Histogram
}

// NewMetrics creates the metrics and registers them with reg. A nil reg uses
// the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waiterdb_reloads_total",
				Help: "Catalog reloads by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		ReloadDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "waiterdb_reload_duration_seconds",
				Help:    "Duration of catalog reloads in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		LastReload: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "waiterdb_last_reload_timestamp_seconds",
				Help: "Unix time of the last successful reload",
			},
		),
		Entries: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "waiterdb_catalog_entries",
				Help: "Entries in the current snapshot",
			},
		),
		DuplicateIDs: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "waiterdb_catalog_duplicate_ids",
				Help: "Ids appearing more than once in the current snapshot",
			},
		),
		Version: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "waiterdb_catalog_version",
				Help: "Version of the current snapshot",
			},
		),
		QueriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "waiterdb_queries_total",
				Help: "Catalog queries by mode (search or browse)",
			},
			[]string{"mode"},
		),
		QueryDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "waiterdb_query_duration_seconds",
				Help:    "Duration of catalog query evaluation in seconds",
				Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
		),
		QueryResults: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "waiterdb_query_results",
				Help:    "Number of entries returned per query",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		),
	}
}

// ObserveReload records one reload attempt.
func (m *Metrics) ObserveReload(source string, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeFailed
	}
	m.ReloadsTotal.WithLabelValues(source, outcome).Inc()
	m.ReloadDuration.Observe(took.Seconds())
	if err == nil {
		m.LastReload.SetToCurrentTime()
	}
}

// ObserveSnapshot records the shape of a newly installed snapshot.
func (m *Metrics) ObserveSnapshot(entries, duplicates int, version uint64) {
	if m == nil {
		return
	}
	m.Entries.Set(float64(entries))
	m.DuplicateIDs.Set(float64(duplicates))
	m.Version.Set(float64(version))
}

// ObserveQuery records one query evaluation.
func (m *Metrics) ObserveQuery(searched bool, took time.Duration, results int) {
	if m == nil {
		return
	}
	mode := "browse"
	if searched {
		mode = "search"
	}
	m.QueriesTotal.WithLabelValues(mode).Inc()
	m.QueryDuration.Observe(took.Seconds())
	m.QueryResults.Observe(float64(results))
}
