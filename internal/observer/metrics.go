package observer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels
	dbOperationLabels = []string{"operation", "table", "status"}
	dropReasonLabels  = []string{"reason"}
	fanoutLabels      = []string{"table"}
	runLabels         = []string{"status"}

	// Cleaning counters
	RowsCleanedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_etl_rows_cleaned_total",
			Help: "Total number of input rows that survived cleaning.",
		},
	)
	RowsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_etl_rows_dropped_total",
			Help: "Total number of input rows silently dropped during cleaning, labeled by reason.",
		},
		dropReasonLabels,
	)

	// Load counters
	StagingRowsInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_etl_staging_rows_inserted_total",
			Help: "Total number of rows appended to the staging table.",
		},
	)
	BatchesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_etl_batches_skipped_total",
			Help: "Total number of input batches skipped because their checksum was already loaded.",
		},
	)
	FanoutRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_etl_fanout_rows_total",
			Help: "Total number of rows inserted into per-country tables, labeled by destination table.",
		},
		fanoutLabels,
	)
	CurrentCountryUpsertsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "customer_etl_current_country_upserts_total",
			Help: "Total number of current-country summary rows upserted.",
		},
	)

	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_etl_runs_total",
			Help: "Total number of pipeline runs, labeled by outcome.",
		},
		runLabels,
	)
	RunDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "customer_etl_run_duration_seconds",
			Help:    "Histogram of full pipeline run durations.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	// DB operation duration
	DbOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "customer_etl_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		dbOperationLabels,
	)
)

// InitMetrics enables or disables metric collection globally.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IncRowsCleaned records rows that survived cleaning.
func IncRowsCleaned(n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	RowsCleanedTotal.Add(float64(n))
}

// IncRowsDropped records rows dropped during cleaning for the given reason.
func IncRowsDropped(reason string, n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	RowsDroppedTotal.WithLabelValues(reason).Add(float64(n))
}

// IncStagingRowsInserted records rows appended to staging.
func IncStagingRowsInserted(n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	StagingRowsInsertedTotal.Add(float64(n))
}

// IncBatchSkipped records an input batch skipped by checksum dedup.
func IncBatchSkipped() {
	if !metricsEnabled {
		return
	}
	BatchesSkippedTotal.Inc()
}

// IncFanoutRows records rows inserted into a per-country table.
func IncFanoutRows(table string, n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	FanoutRowsTotal.WithLabelValues(table).Add(float64(n))
}

// IncCurrentCountryUpserts records upserted summary rows.
func IncCurrentCountryUpserts(n int) {
	if !metricsEnabled || n <= 0 {
		return
	}
	CurrentCountryUpsertsTotal.Add(float64(n))
}

// ObserveRun records the outcome and duration of a full pipeline run.
func ObserveRun(duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	RunsTotal.WithLabelValues(status).Inc()
	RunDurationSeconds.Observe(duration.Seconds())
}

// ObserveDbOperationDuration records the duration of a database operation.
func ObserveDbOperationDuration(operation, table string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DbOperationDurationSeconds.WithLabelValues(operation, table, status).Observe(duration.Seconds())
}
