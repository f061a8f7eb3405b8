package session

import (
	"sync"
	"time"
)

// SearchResult is one row of the result buffer. Results are immutable
// once appended and are replaced wholesale on re-query.
type SearchResult struct {
	HighlightedPath     string
	HighlightedFileName string
	FullPath            string
	IsFile              bool
	Size                int64
	DateModified        time.Time
}

// BufferListener receives the batched change notifications of a
// ResultBuffer. Notify emits exactly one ResultsReset followed by one
// CountChanged per call, never one event per record.
type BufferListener interface {
	ResultsReset()
	CountChanged(count int)
}

// ResultBuffer is an ordered sequence of search results. Appends and
// clears are silent; consumers learn about changes only through Notify.
//
// The buffer shares one lock with the owning session so that session
// state and buffer contents can never be observed torn while a
// background fetch is writing.
type ResultBuffer struct {
	mu        *sync.Mutex
	items     []SearchResult
	listeners []BufferListener
}

// NewResultBuffer creates a buffer guarded by the given lock.
func NewResultBuffer(mu *sync.Mutex) *ResultBuffer {
	return &ResultBuffer{mu: mu}
}

// AddListener registers a listener for Notify events.
func (b *ResultBuffer) AddListener(l BufferListener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Append adds a result without notifying.
func (b *ResultBuffer) Append(r SearchResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(r)
}

// Clear removes all results without notifying.
func (b *ResultBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearLocked()
}

// Len returns the number of buffered results.
func (b *ResultBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Get returns the result at index.
func (b *ResultBuffer) Get(index int) (SearchResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.items) {
		return SearchResult{}, false
	}
	return b.items[index], true
}

// Snapshot returns a copy of the buffered results.
func (b *ResultBuffer) Snapshot() []SearchResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]SearchResult, len(b.items))
	copy(out, b.items)
	return out
}

// Notify emits one structural reset plus one count update to every
// listener. Listeners run outside the lock so they may read the buffer.
func (b *ResultBuffer) Notify() {
	b.mu.Lock()
	count := len(b.items)
	listeners := make([]BufferListener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.Unlock()

	for _, l := range listeners {
		l.ResultsReset()
		l.CountChanged(count)
	}
}

// appendLocked, clearLocked, and lenLocked serve the session's fetch
// loop, which already holds the shared lock.

func (b *ResultBuffer) appendLocked(r SearchResult) {
	b.items = append(b.items, r)
}

func (b *ResultBuffer) clearLocked() {
	b.items = b.items[:0]
}

func (b *ResultBuffer) lenLocked() int {
	return len(b.items)
}
