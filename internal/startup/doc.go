// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// This package centralizes all application configuration and provides consistent
// logging throughout the application lifecycle.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - ROOT_DIR: Path to the indexed file tree (default: /files)
//   - DATABASE_DIR: Path to database directory (default: /database)
//   - REPORT_DIR: Path to duplicate scan report directory (default: /reports)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - INDEX_INTERVAL: Full re-index interval as Go duration (default: 30m)
//   - HIDE_EMPTY_SEARCH: Skip querying while the search term is empty (default: true)
//   - FILTER_MEMORY: Keep the active filter across search resets (default: false)
//   - AUTO_DELETE_SAME_NAME: Delete same-name duplicates without prompting (default: false)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The package validates required directories:
//   - Database directory: Required, must be writable
//   - Report directory: Required, must be writable
//   - Root directory: Checked but not created (should be mounted)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
//   - [LogIndexInit]: Index store initialization timing
//   - [LogWalkerInit]: Walker configuration and interval
//   - [LogHTTPRoutes]: Registered HTTP routes
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
