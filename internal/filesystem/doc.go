/*
Package filesystem provides resilient filesystem operations with automatic retry
logic for NFS stale file handle errors.

# Purpose

This package wraps standard filesystem operations (os.Stat, os.Remove, opening
files for append) with retry logic designed to handle transient NFS failures,
particularly ESTALE (stale file handle) errors that occur when NFS-mounted files
are accessed during network issues or server-side changes.

# Key Features

  - Automatic retry with exponential backoff for NFS ESTALE errors (errno 116)
  - Configurable retry attempts (default: 3) and backoff timings
  - Transparent fallback to standard os behavior for non-NFS errors
  - Zero overhead for successful operations

# Usage

Basic usage with default retry configuration:

	import "filedex/internal/filesystem"

	info, err := filesystem.StatWithRetry("/nfs/mount/file.txt", filesystem.DefaultRetryConfig())
	if err != nil {
	    log.Fatal(err)
	}

	f, err := filesystem.OpenAppendWithRetry("/reports/allFiles.txt", filesystem.DefaultRetryConfig())
	if err != nil {
	    log.Fatal(err)
	}
	defer f.Close()

Custom retry configuration:

	config := filesystem.RetryConfig{
	    MaxRetries:     5,
	    InitialBackoff: 100 * time.Millisecond,
	    MaxBackoff:     1 * time.Second,
	}
	err := filesystem.RemoveWithRetry(path, config)

# Retry Behavior

The retry logic implements exponential backoff with the following defaults:
  - MaxRetries: 3 attempts
  - InitialBackoff: 50ms
  - MaxBackoff: 500ms

Only NFS stale file handle errors (ESTALE) trigger retries. All other errors
fail immediately without retry attempts.

# Integration

This package is used wherever filedex touches files directly:

  - internal/index/walker.go: Stat during filesystem walks
  - internal/dedup: File deletion and report writing
  - internal/session/history.go: Search history appends
*/
package filesystem
