// Package middleware provides HTTP middleware for the filedex server.
//
// It includes:
//   - Request logging with status, size and duration
//   - Prometheus request metrics with normalized path labels
//   - Configurable filtering for health check endpoints
package middleware
