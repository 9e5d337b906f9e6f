package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StoreOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zen_store_operations_total",
		Help: "Store operations by store, operation and result",
	}, []string{"store", "operation", "status"})

	ReadRecoveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zen_read_recoveries_total",
		Help: "Reads that fell back to a default value after a failure",
	}, []string{"store"})

	RebuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "zen_article_rebuild_seconds",
		Help:    "Duration of article index rebuilds",
		Buckets: prometheus.DefBuckets,
	})

	RebuildFiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "zen_article_rebuild_files",
		Help: "Markdown files found by the last article index rebuild",
	})

	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zen_exports_total",
		Help: "Rendered exports by format and result",
	}, []string{"format", "status"})

	ExportBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zen_export_bytes",
		Help:    "Size of rendered exports",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"format"})
)

// MustRegister registers every collector of this package.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		StoreOperations,
		ReadRecoveries,
		RebuildSeconds,
		RebuildFiles,
		ExportsTotal,
		ExportBytes,
	)
}

// Observe records the result of a store operation.
func Observe(store, operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOperations.WithLabelValues(store, operation, status).Inc()
}

// Recovered records a read that degraded to its default value.
func Recovered(store string) {
	ReadRecoveries.WithLabelValues(store).Inc()
}

// Exported records a rendered export.
func Exported(format string, size int, err error) {
	if err != nil {
		ExportsTotal.WithLabelValues(format, "error").Inc()
		return
	}
	ExportsTotal.WithLabelValues(format, "ok").Inc()
	ExportBytes.WithLabelValues(format).Observe(float64(size))
}
