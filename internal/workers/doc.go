// Package workers provides worker pool sizing utilities that respect
// container CPU limits.
package workers
