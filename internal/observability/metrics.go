package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// notification pipeline. Per-source series are labelled with the source name.
type Metrics struct {
	EntriesCollected  *prometheus.CounterVec // label: source
	RelevancesMatched *prometheus.CounterVec // label: source
	RelevancesNew     *prometheus.CounterVec // label: source
	JobsDispatched    *prometheus.CounterVec // label: source
	SendErrors        *prometheus.CounterVec // label: source
	CollectErrors     *prometheus.CounterVec // label: source

	CycleDuration  *prometheus.HistogramVec // label: source
	LastCycleOK    *prometheus.GaugeVec     // label: source
	WatcherRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.EntriesCollected,
		m.RelevancesMatched,
		m.RelevancesNew,
		m.JobsDispatched,
		m.SendErrors,
		m.CollectErrors,
		m.CycleDuration,
		m.LastCycleOK,
		m.WatcherRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EntriesCollected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "entries_collected_total",
			Help:      "Total announcement entries collected per source.",
		}, []string{"source"}),
		RelevancesMatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "relevances_matched_total",
			Help:      "Total relevance matches found per source, new or not.",
		}, []string{"source"}),
		RelevancesNew: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "relevances_new_total",
			Help:      "Total relevances not yet present in the ledger.",
		}, []string{"source"}),
		JobsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "jobs_dispatched_total",
			Help:      "Total notification jobs handed to the notifier.",
		}, []string{"source"}),
		SendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "send_errors_total",
			Help:      "Total notifier failures.",
		}, []string{"source"}),
		CollectErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "island_notify",
			Name:      "collect_errors_total",
			Help:      "Total collection failures that aborted a cycle.",
		}, []string{"source"}),
		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "island_notify",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of one collect-match-notify cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"source"}),
		LastCycleOK: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "island_notify",
			Name:      "last_cycle_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle per source.",
		}, []string{"source"}),
		WatcherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "island_notify",
			Name:      "watcher_running",
			Help:      "1 when the periodic watcher is active, 0 when shut down.",
		}),
	}
}
