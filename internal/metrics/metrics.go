package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Header line processing
	HeaderLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_csv_header_lines_total",
			Help: "Total number of header lines processed",
		},
		[]string{"status"},
	)

	HeaderColumns = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_csv_header_columns",
			Help:    "Number of columns per accepted header block",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	DecodeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telhawk_csv_decode_errors_total",
			Help: "Total number of header decode failures by error kind",
		},
		[]string{"kind"},
	)

	ProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_csv_process_duration_seconds",
			Help:    "Duration of header line processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Storage metrics
	StorageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "telhawk_csv_storage_duration_seconds",
			Help:    "Duration of header store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	StorageErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_csv_storage_errors_total",
			Help: "Total number of header store errors",
		},
	)

	// Messaging metrics
	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_csv_publish_errors_total",
			Help: "Total number of failed header announcements",
		},
	)

	DLQWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "telhawk_csv_dlq_writes_total",
			Help: "Total number of header lines written to the dead letter queue",
		},
	)
)
