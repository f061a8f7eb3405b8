// Package session implements the batched, cancellable search engine: a
// Session owns the current search term, filter, sort, and match flags,
// issues one bounded query batch at a time against the index service,
// and streams each batch into a shared ResultBuffer.
//
// Every parameter change cancels the outstanding fetch and starts a new
// one; cancellation is cooperative, checked per record, and never
// surfaces as an error. Consumers observe the buffer only through its
// batched change notifications, one per completed batch.
package session
