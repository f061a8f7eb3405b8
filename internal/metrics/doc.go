// Package metrics provides Prometheus instrumentation for the filedex
// application.
//
// All metrics are prefixed with "filedex_" to avoid naming collisions with
// other applications. Metrics are registered via promauto at package load
// and exposed by the metrics server through Handler.
//
// # Metric Categories
//
//   - HTTP: request counts, durations, and in-flight gauge, recorded by the
//     middleware package
//   - DB: index store query counts, durations, and open connections
//   - Walker: background indexing runs, last-run stats, and error counts
//   - Session: query batch outcomes and fetched result counts
//   - Scan: duplicate scan runs, per-partition classification counts,
//     deletion failures
//   - Report: report writer line and error counts
//   - Filesystem: retry behavior for flaky (NFS) volumes
package metrics
