package dedup

import (
	"fmt"
	"os"
	"path/filepath"

	"filedex/internal/filesystem"
	"filedex/internal/logging"
	"filedex/internal/metrics"
)

// Entry is one (path, size) pair as written to the scan reports.
type Entry struct {
	Path string
	Size int64
}

// Report file names under the destination directory.
const (
	AllFilesReport   = "allFiles.txt"
	DuplicatesReport = "duplicates.txt"
	UniqueReport     = "unique.txt"
	DeletedReport    = "deleted.txt"
)

// ReportWriter appends scan entries to flat text reports in one
// destination directory, one "<path> <size>" line per entry. Reports are
// append-only: they are never re-read, truncated, or deduplicated, so
// re-running a scan appends to the previous run's lines.
//
// Persistence is best-effort. Every failure is logged and swallowed; a
// report write never blocks or fails the scan.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer for the given destination directory.
// The directory is created on first append if absent.
func NewReportWriter(dir string) *ReportWriter {
	return &ReportWriter{dir: dir}
}

// Dir returns the destination directory.
func (w *ReportWriter) Dir() string { return w.dir }

// Append appends the entries to the named report.
func (w *ReportWriter) Append(report string, entries []Entry) {
	if len(entries) == 0 {
		return
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		logging.Error("Failed to create report directory %s: %v", w.dir, err)
		metrics.ReportWriteErrors.WithLabelValues(report).Inc()
		return
	}

	path := filepath.Join(w.dir, report)
	f, err := filesystem.OpenAppendWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Error("Failed to open report %s: %v", path, err)
		metrics.ReportWriteErrors.WithLabelValues(report).Inc()
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Error("Failed to close report %s: %v", path, closeErr)
		}
	}()

	for _, e := range entries {
		if _, err := fmt.Fprintf(f, "%s %d\n", e.Path, e.Size); err != nil {
			logging.Error("Failed to append to report %s: %v", path, err)
			metrics.ReportWriteErrors.WithLabelValues(report).Inc()
			return
		}
	}

	metrics.ReportLinesWritten.WithLabelValues(report).Add(float64(len(entries)))
}
