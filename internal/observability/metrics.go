package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accidents_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	// Dataset store metrics.
	DatasetLoads        prometheus.Counter
	DatasetLoadErrors   prometheus.Counter
	DatasetCache        *prometheus.CounterVec // labels: result={hit,miss}
	DatasetLoadDuration prometheus.Histogram
	DatasetRecords      prometheus.Gauge

	// View pipeline metrics.
	ViewsBuilt  prometheus.Counter
	ViewRows    prometheus.Histogram
	EmptyViews  prometheus.Counter
	ViewLatency prometheus.Histogram

	// Export metrics.
	ExportedRows     *prometheus.CounterVec // labels: scope={filtered,full}
	PublishedRecords prometheus.Counter
}

var viewRowBuckets = []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 10000, 50000}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Total dataset files parsed from disk.",
		}),
		DatasetLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_load_errors_total",
			Help:      "Total dataset loads that failed.",
		}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of parsing and enriching a dataset file.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Records in the most recently loaded dataset.",
		}),
		ViewsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_built_total",
			Help:      "Filtered views computed.",
		}),
		ViewRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_rows",
			Help:      "Rows per filtered view.",
			Buckets:   viewRowBuckets,
		}),
		EmptyViews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_views_total",
			Help:      "Filtered views that matched no records.",
		}),
		ViewLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_build_duration_seconds",
			Help:      "Duration of filtering and aggregating one view.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		ExportedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_rows_total",
			Help:      "Rows written to CSV downloads by scope.",
		}, []string{"scope"}),
		PublishedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_records_total",
			Help:      "Records published to the Kafka export topic.",
		}),
	}

	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadErrors,
		m.DatasetCache,
		m.DatasetLoadDuration,
		m.DatasetRecords,
		m.ViewsBuilt,
		m.ViewRows,
		m.EmptyViews,
		m.ViewLatency,
		m.ExportedRows,
		m.PublishedRecords,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they need.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetLoads:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "dataset_loads_total"}),
		DatasetLoadErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "dataset_load_errors_total"}),
		DatasetCache:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "dataset_cache_total"}, []string{"result"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "dataset_load_duration_seconds"}),
		DatasetRecords:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "dataset_records"}),
		ViewsBuilt:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "views_built_total"}),
		ViewRows:            prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "view_rows", Buckets: viewRowBuckets}),
		EmptyViews:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "empty_views_total"}),
		ViewLatency:         prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "view_build_duration_seconds"}),
		ExportedRows:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "exported_rows_total"}, []string{"scope"}),
		PublishedRecords:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "published_records_total"}),
	}
}
