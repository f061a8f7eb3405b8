// Command dedupe runs a duplicate scan against the filedex index from a
// terminal.
//
// It enumerates every indexed file beneath a root folder, looks up
// duplicate candidates for each one (same size and extension, different
// path), and writes the allFiles, duplicates, unique and deleted
// reports. When stdin is a terminal, files with candidates are resolved
// interactively; answering yes deletes the inspected file from disk and
// drops it from the index.
//
// Usage:
//
//	dedupe scan [root]
//
// Environment:
//
//	DATABASE_DIR          - Path to database directory (default: /database)
//	REPORT_DIR            - Path to report directory (default: /reports)
//	ROOT_DIR              - Default scan root (default: /files)
//	AUTO_DELETE_SAME_NAME - Set to "true" to delete same-name duplicates
//	                        without prompting
//
// Notes:
//
// The scan reads the index, not the filesystem; run the server (or wait
// for its periodic walk) first so the index is current. Reports are
// appended, so repeated scans accumulate lines in the same files.
package main
