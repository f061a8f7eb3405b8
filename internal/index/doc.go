// Package index provides the in-process file index: a SQLite-backed
// store, a query service implementation over it, and a background
// filesystem walker that keeps the store current.
//
// The store holds one row per filesystem entry (name, path, parent,
// extension, kind, size, modification time, run count). Queries arrive
// as a small search mini-language (substring terms plus ext:, size:,
// parent:, file:/folder:, and ! exclusion operators) combined with the
// match flags, sort key, and paging window from the query service
// contract in filedex/internal/indexclient.
//
// Service implements that contract directly, which lets sessions and the
// duplicate scanner run unchanged against either this local index or an
// external index process.
package index
