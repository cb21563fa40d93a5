package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourcesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tremor_sources_processed_total",
			Help: "Total number of seismic sources processed",
		},
		[]string{"trt"},
	)

	EffectiveRuptures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tremor_effective_ruptures_total",
			Help: "Total number of ruptures that contributed to hazard curves",
		},
		[]string{"trt"},
	)

	SourceComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tremor_source_compute_duration_seconds",
			Help:    "Time taken to process a single source",
			Buckets: prometheus.DefBuckets,
		},
	)

	RegionComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tremor_region_compute_duration_seconds",
			Help:    "Time taken to compute curves for a tectonic region",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		},
	)

	StorageWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tremor_storage_write_failures_total",
			Help: "Total number of failed curve persistence attempts",
		},
	)
)
