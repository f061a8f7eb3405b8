// Package indexclient defines the contract of the always-resident file
// index service that filedex drives.
//
// The service is queried through a stateful request builder: callers
// configure the search string, result columns, sort order, match flags,
// and paging window, then execute the query and read the materialized
// page through indexed accessors. The package also defines the service's
// fixed error enumeration, the sort key table used for external handoff,
// and the minimum supported service version.
//
// The in-process implementation backed by SQLite lives in
// filedex/internal/index; this package holds only the contract and its
// value types so that sessions and scanners stay independent of any one
// transport.
package indexclient
