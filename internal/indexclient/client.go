package indexclient

import "time"

// RequestFlag selects which columns the service materializes for each
// result of the next query. Flags combine as a bitmask.
type RequestFlag uint32

const (
	// RequestFullPath requests the full path and file name column
	RequestFullPath RequestFlag = 1 << iota
	// RequestHighlightedPath requests the highlighted path column
	RequestHighlightedPath
	// RequestHighlightedFileName requests the highlighted file name column
	RequestHighlightedFileName
	// RequestSize requests the file size column
	RequestSize
	// RequestDateModified requests the modification time column
	RequestDateModified
)

// DefaultRequestFlags covers every column the session and scanner consume.
const DefaultRequestFlags = RequestFullPath | RequestHighlightedPath |
	RequestHighlightedFileName | RequestSize | RequestDateModified

// Client is the contract of the always-resident file index service.
//
// The client is a stateful request builder: the Set* methods configure the
// next query, Query executes it, and the GetResult* accessors read the
// materialized page. Implementations are not safe for concurrent use; each
// consumer owns its own client instance.
type Client interface {
	// SetSearch sets the search string for the next query.
	SetSearch(text string)
	// SetRequestFlags selects the result columns for the next query.
	SetRequestFlags(flags RequestFlag)
	// SetSort sets the sort order for the next query.
	SetSort(key SortKey)

	SetMatchCase(enabled bool)
	SetMatchPath(enabled bool)
	SetMatchWholeWord(enabled bool)
	SetMatchRegex(enabled bool)

	// SetMax caps the number of results materialized per query.
	SetMax(count int)
	// SetOffset skips the first count results of the next query.
	SetOffset(count int)

	// Query executes the configured query. When wait is true the call
	// blocks until results are available. It reports whether the query
	// succeeded; on failure GetLastError describes the cause.
	Query(wait bool) bool

	// GetNumResults returns the number of results in the current page.
	GetNumResults() int
	// GetTotalResults returns the total number of matches, independent
	// of SetMax and SetOffset.
	GetTotalResults() int

	GetResultFullPath(index int) string
	GetResultHighlightedPath(index int) string
	GetResultHighlightedFileName(index int) string
	IsFileResult(index int) bool
	GetResultSize(index int) int64
	GetResultDateModified(index int) time.Time

	// GetLastError returns the error code of the most recent failure.
	GetLastError() ErrorCode

	GetMajorVersion() int
	GetMinorVersion() int
	GetRevision() int

	// IncrementRunCount bumps the run counter of the given path, used to
	// rank recently launched files. It reports whether the path was known.
	IncrementRunCount(path string) bool

	// IsFastSort reports whether the service can serve the given sort key
	// from a prebuilt ordering without a full resort.
	IsFastSort(key SortKey) bool

	// SetInstanceName targets a named service instance.
	SetInstanceName(name string)
}
