package session

import (
	"context"
	"sync"
	"time"

	"filedex/internal/indexclient"
	"filedex/internal/logging"
	"filedex/internal/metrics"
)

// BatchCap is the page size of one query batch: a batch never fetches
// more than this many results in a single round trip.
const BatchCap = 200

// Options configures a session's initial query parameters and policies.
type Options struct {
	Sort           indexclient.SortKey
	MatchCase      bool
	MatchPath      bool
	MatchWholeWord bool
	MatchRegex     bool

	// HideEmpty skips querying entirely while the search term is empty.
	HideEmpty bool
	// FilterMemory keeps the current filter across Reset instead of
	// restoring the first default filter.
	FilterMemory bool

	History History
}

// Session coordinates the current search parameters and the single
// outstanding fetch against the query service, populating its result
// buffer one batch at a time.
//
// Parameter setters cancel any in-flight fetch and start a new one; a
// newer batch always fully supersedes an older one. All session fields
// and the buffer share one lock, so a consumer never observes torn state
// while a background fetch is writing.
type Session struct {
	client   indexclient.Client
	provider FilterProvider
	history  History

	hideEmpty    bool
	filterMemory bool

	mu     sync.Mutex
	buffer *ResultBuffer
	term   string
	filter Filter
	cancel context.CancelFunc

	// total result count across all pages; unknown until the first
	// batch completes
	total      int
	totalKnown bool

	sort           indexclient.SortKey
	matchCase      bool
	matchPath      bool
	matchWholeWord bool
	matchRegex     bool

	// queryMu serializes client use across fetch workers; the client is
	// a stateful request builder and not safe for concurrent use
	queryMu sync.Mutex
	wg      sync.WaitGroup
}

// New creates a session over the given client. A nil provider gets the
// built-in filter list; the first default filter starts active.
func New(client indexclient.Client, provider FilterProvider, opts Options) *Session {
	if provider == nil {
		provider = StaticFilters{Defaults: BuiltinFilters()}
	}

	s := &Session{
		client:         client,
		provider:       provider,
		history:        opts.History,
		hideEmpty:      opts.HideEmpty,
		filterMemory:   opts.FilterMemory,
		sort:           opts.Sort,
		matchCase:      opts.MatchCase,
		matchPath:      opts.MatchPath,
		matchWholeWord: opts.MatchWholeWord,
		matchRegex:     opts.MatchRegex,
	}
	s.buffer = NewResultBuffer(&s.mu)

	if defaults := provider.DefaultFilters(); len(defaults) > 0 {
		s.filter = defaults[0]
	}
	return s
}

// Buffer returns the session's result buffer.
func (s *Session) Buffer() *ResultBuffer { return s.buffer }

// SearchTerm returns the current search term.
func (s *Session) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// CurrentFilter returns the active filter.
func (s *Session) CurrentFilter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// TotalResults returns the total match count of the last completed
// batch. It reports false until a batch has completed.
func (s *Session) TotalResults() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.totalKnown
}

// SetSearchTerm changes the search term and re-queries. Setting the
// current value is a no-op.
func (s *Session) SetSearchTerm(text string) {
	s.mu.Lock()
	if s.term == text {
		s.mu.Unlock()
		return
	}
	s.term = text
	s.mu.Unlock()

	s.QueryBatch(false)
}

// SetFilter changes the active filter and re-queries. Setting the
// current value is a no-op.
func (s *Session) SetFilter(f Filter) {
	s.mu.Lock()
	if s.filter == f {
		s.mu.Unlock()
		return
	}
	s.filter = f
	s.mu.Unlock()

	s.QueryBatch(false)
}

// SetSort changes the sort order and re-queries.
func (s *Session) SetSort(key indexclient.SortKey) {
	s.mu.Lock()
	if s.sort == key {
		s.mu.Unlock()
		return
	}
	s.sort = key
	s.mu.Unlock()

	s.QueryBatch(false)
}

// SetMatchCase toggles case-sensitive matching and re-queries.
func (s *Session) SetMatchCase(enabled bool) { s.setFlag(&s.matchCase, enabled) }

// SetMatchPath toggles full-path matching and re-queries.
func (s *Session) SetMatchPath(enabled bool) { s.setFlag(&s.matchPath, enabled) }

// SetMatchWholeWord toggles whole-word matching and re-queries. Whole
// word is forced off while regex mode is active.
func (s *Session) SetMatchWholeWord(enabled bool) { s.setFlag(&s.matchWholeWord, enabled) }

// SetMatchRegex toggles regex mode and re-queries.
func (s *Session) SetMatchRegex(enabled bool) { s.setFlag(&s.matchRegex, enabled) }

func (s *Session) setFlag(field *bool, enabled bool) {
	s.mu.Lock()
	if *field == enabled {
		s.mu.Unlock()
		return
	}
	*field = enabled
	s.mu.Unlock()

	s.QueryBatch(false)
}

// QueryBatch fetches one batch of results on a background worker,
// cancelling any outstanding fetch first. With appendResults the batch
// extends the buffer from its current length ("load more"); otherwise
// the buffer is cleared and repopulated from offset zero.
func (s *Session) QueryBatch(appendResults bool) {
	ctx := s.restartFetch()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.fetch(ctx, appendResults)
	}()
}

// Wait blocks until no fetch is in flight.
func (s *Session) Wait() {
	s.wg.Wait()
}

// Close cancels any outstanding fetch and waits for it to finish.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// restartFetch cancels the prior fetch and installs a fresh cancellation
// handle. The cancel always fires before the new fetch acquires the lock
// to clear or append, so a superseded fetch can never write after the
// newer one has started.
func (s *Session) restartFetch() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	return ctx
}

func (s *Session) fetch(ctx context.Context, appendResults bool) {
	start := time.Now()

	s.queryMu.Lock()
	defer s.queryMu.Unlock()

	if ctx.Err() != nil {
		metrics.SessionBatchesTotal.WithLabelValues("cancelled").Inc()
		return
	}

	s.mu.Lock()
	if !appendResults {
		s.buffer.clearLocked()
	}
	term := s.term
	filter := s.filter
	offset := s.buffer.lenLocked()
	sort := s.sort
	matchCase := s.matchCase
	matchPath := s.matchPath
	// Regex and whole-word are mutually exclusive; regex wins
	wholeWord := s.matchWholeWord && !s.matchRegex
	regex := s.matchRegex
	s.mu.Unlock()

	if term == "" && s.hideEmpty {
		s.mu.Lock()
		s.buffer.clearLocked()
		s.totalKnown = false
		s.mu.Unlock()

		s.buffer.Notify()
		metrics.SessionBatchesTotal.WithLabelValues("skipped").Inc()
		return
	}

	c := s.client
	c.SetSearch(filter.Apply(term))
	c.SetRequestFlags(indexclient.DefaultRequestFlags)
	c.SetSort(sort)
	c.SetMatchCase(matchCase)
	c.SetMatchPath(matchPath)
	c.SetMatchWholeWord(wholeWord)
	c.SetMatchRegex(regex)
	c.SetMax(BatchCap)
	c.SetOffset(offset)

	if !c.Query(true) {
		logging.Error("Query batch failed for %q: %v", term, indexclient.LastError(c))
		metrics.SessionBatchesTotal.WithLabelValues("failed").Inc()
		return
	}

	total := c.GetTotalResults()
	num := c.GetNumResults()

	added := 0
	cancelled := false

	s.mu.Lock()
	s.total = total
	s.totalKnown = true
	for i := 0; i < num; i++ {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		s.buffer.appendLocked(SearchResult{
			HighlightedPath:     c.GetResultHighlightedPath(i),
			HighlightedFileName: c.GetResultHighlightedFileName(i),
			FullPath:            c.GetResultFullPath(i),
			IsFile:              c.IsFileResult(i),
			Size:                c.GetResultSize(i),
			DateModified:        c.GetResultDateModified(i),
		})
		added++
	}
	s.mu.Unlock()

	if cancelled {
		// Silent abandonment; whatever was already written stays
		metrics.SessionBatchesTotal.WithLabelValues("cancelled").Inc()
		return
	}

	metrics.SessionBatchesTotal.WithLabelValues("completed").Inc()
	metrics.SessionBatchDuration.Observe(time.Since(start).Seconds())
	metrics.SessionResultsFetched.Add(float64(added))

	// An appended batch that contributed nothing changes nothing
	if appendResults && added == 0 {
		return
	}
	s.buffer.Notify()
}

// CycleFilters moves the current filter offset positions through the
// ring formed by the default filters followed by the user filters. Any
// offset sign or magnitude is safe.
func (s *Session) CycleFilters(offset int) {
	defaults := s.provider.DefaultFilters()
	users := s.provider.UserFilters()
	total := len(defaults) + len(users)
	if total == 0 {
		return
	}

	current := s.CurrentFilter()

	// Flat position in the combined ring; a filter found in neither
	// list lands on the sentinel just past the defaults
	flat := len(defaults)
	if i := indexOfFilter(defaults, current); i >= 0 {
		flat = i
	} else if i := indexOfFilter(users, current); i >= 0 {
		flat = len(defaults) + i
	}

	pos := (flat + offset) % total
	if pos < 0 {
		pos += total
	}
	s.SelectFilterFromIndex(pos)
}

// SelectFilterFromIndex selects a filter by flat index into the combined
// default-then-user list. Out-of-range indices are ignored.
func (s *Session) SelectFilterFromIndex(index int) {
	defaults := s.provider.DefaultFilters()
	users := s.provider.UserFilters()

	switch {
	case index < 0 || index >= len(defaults)+len(users):
		return
	case index < len(defaults):
		s.SetFilter(defaults[index])
	default:
		s.SetFilter(users[index-len(defaults)])
	}
}

// Reset records the current term to history, clears it, and restores the
// first default filter unless filter memory is enabled. Both changes
// re-query through their setters; Reset never issues a second explicit
// batch.
func (s *Session) Reset() {
	term := s.SearchTerm()
	if s.history != nil && term != "" {
		if err := s.history.Record(term); err != nil {
			logging.Warn("Failed to record search history: %v", err)
		}
	}

	s.SetSearchTerm("")

	if s.filterMemory {
		return
	}
	defaults := s.provider.DefaultFilters()
	if len(defaults) > 0 && s.CurrentFilter() != defaults[0] {
		s.SetFilter(defaults[0])
	}
}

func indexOfFilter(filters []Filter, f Filter) int {
	for i := range filters {
		if filters[i] == f {
			return i
		}
	}
	return -1
}
