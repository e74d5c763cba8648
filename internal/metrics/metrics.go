package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments of the profiling pipeline.
type Metrics struct {
	RunsTotal       prometheus.Counter
	RowsDropped     prometheus.Counter
	InsufficientRun prometheus.Counter

	// Feature modules
	ModuleDuration *prometheus.HistogramVec // labels: module
	ModuleFailures *prometheus.CounterVec   // labels: module
	NullFeatures   prometheus.Histogram

	// Classifier
	Classifications *prometheus.CounterVec // labels: method
	Confidence      prometheus.Histogram
	ModelLoadErrors prometheus.Counter

	// Market data
	MarketDataRequests *prometheus.CounterVec // labels: endpoint, outcome
}

// NewMetrics creates the instruments and registers them on reg. A nil reg
// leaves them unregistered, which is what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_runs_total",
			Help: "Total feature extraction runs",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_rows_dropped_total",
			Help: "Input rows rejected by validation",
		}),
		InsufficientRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_insufficient_runs_total",
			Help: "Runs skipped for having fewer than the minimum number of trades",
		}),
		ModuleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "profiler_module_duration_seconds",
			Help:    "Feature module execution time",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"module"}),
		ModuleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profiler_module_failures_total",
			Help: "Feature modules that returned an error or panicked",
		}, []string{"module"}),
		NullFeatures: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiler_null_feature_ratio",
			Help:    "Share of null features per run",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profiler_classifications_total",
			Help: "Archetype classifications by method",
		}, []string{"method"}),
		Confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "profiler_classification_confidence",
			Help:    "Entropy-based confidence of classifications",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		ModelLoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "profiler_model_load_errors_total",
			Help: "Failed attempts to load the mixture model artifact",
		}),
		MarketDataRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "profiler_marketdata_requests_total",
			Help: "Market data lookups by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RunsTotal,
			m.RowsDropped,
			m.InsufficientRun,
			m.ModuleDuration,
			m.ModuleFailures,
			m.NullFeatures,
			m.Classifications,
			m.Confidence,
			m.ModelLoadErrors,
			m.MarketDataRequests,
		)
	}
	return m
}

// Nop returns unregistered instruments, for callers that do not export metrics.
func Nop() *Metrics {
	return NewMetrics(nil)
}
