package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filedex_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Index store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_db_queries_total",
			Help: "Total number of index database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filedex_db_query_duration_seconds",
			Help:    "Index database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_db_connections_open",
			Help: "Number of open index database connections",
		},
	)
)

// Walker metrics
var (
	WalkerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedex_walker_runs_total",
			Help: "Total number of index walker runs",
		},
	)

	WalkerLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_walker_last_run_timestamp",
			Help: "Timestamp of the last index walker run",
		},
	)

	WalkerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_walker_last_run_duration_seconds",
			Help: "Duration of the last index walker run in seconds",
		},
	)

	WalkerFilesIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedex_walker_files_indexed_total",
			Help: "Total number of files indexed by the walker",
		},
	)

	WalkerErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedex_walker_errors_total",
			Help: "Total number of walker errors",
		},
	)

	WalkerIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_walker_running",
			Help: "Whether the walker is currently running (1 = running, 0 = idle)",
		},
	)
)

// Search session metrics
var (
	SessionBatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_session_batches_total",
			Help: "Total number of session query batches by outcome",
		},
		[]string{"outcome"}, // "completed", "cancelled", "failed", "skipped"
	)

	SessionBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filedex_session_batch_duration_seconds",
			Help:    "Session query batch duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	SessionResultsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedex_session_results_fetched_total",
			Help: "Total number of result records fetched into session buffers",
		},
	)
)

// Duplicate scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_scan_runs_total",
			Help: "Total number of duplicate scans by status",
		},
		[]string{"status"}, // "completed", "failed"
	)

	ScanFilesClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_scan_files_classified_total",
			Help: "Total number of files classified by the duplicate scanner",
		},
		[]string{"partition"}, // "unique", "duplicate", "deleted"
	)

	ScanDeletionFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filedex_scan_deletion_failures_total",
			Help: "Total number of failed file deletions during duplicate scans",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filedex_scan_duration_seconds",
			Help:    "Duplicate scan duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filedex_scan_running",
			Help: "Whether a duplicate scan is currently running (1 = running, 0 = idle)",
		},
	)
)

// Report writer metrics
var (
	ReportLinesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_report_lines_written_total",
			Help: "Total number of report lines appended",
		},
		[]string{"report"},
	)

	ReportWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_report_write_errors_total",
			Help: "Total number of report append failures",
		},
		[]string{"report"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filedex_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors observed",
		},
		[]string{"operation"},
	)
)

// Handler returns the HTTP handler serving the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
