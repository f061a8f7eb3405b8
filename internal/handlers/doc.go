// Package handlers provides HTTP request handlers for the filedex API.
//
// It includes handlers for:
//   - Search sessions, result paging and filter cycling
//   - Duplicate scan launch and status
//   - Index stats and reindex triggering
//   - Health checks, readiness and version info
package handlers
