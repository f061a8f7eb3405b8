// Package dedup implements the duplicate-file scan: it enumerates every
// file under a root folder through the index service, partitions the
// files into unique, duplicate, and deleted, and persists the partitions
// as append-only text reports.
//
// Duplicate candidacy is a size-and-extension heuristic; file contents
// are never hashed or compared. Deletion is a synchronous side effect
// governed by the configured Policy.
package dedup
