package index

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"filedex/internal/indexclient"
	"filedex/internal/logging"
)

// Version reported by the in-process service implementation.
const (
	serviceVersionMajor    = 1
	serviceVersionMinor    = 5
	serviceVersionRevision = 0
)

// Service is the in-process implementation of the query service contract,
// backed by the SQLite store.
//
// Like the contract it implements, a Service is a stateful request
// builder and is not safe for concurrent use. Consumers that query
// concurrently each take their own Service over the shared store.
type Service struct {
	store    *Store
	instance string

	// pending query configuration
	search         string
	flags          indexclient.RequestFlag
	sort           indexclient.SortKey
	matchCase      bool
	matchPath      bool
	matchWholeWord bool
	matchRegex     bool
	max            int
	offset         int

	// current page
	page      *Page
	hlTerms   []string
	hlRegex   *regexp.Regexp
	lastError indexclient.ErrorCode
}

// NewService creates a Service over the given store.
func NewService(store *Store) *Service {
	return &Service{
		store: store,
		flags: indexclient.DefaultRequestFlags,
		page:  &Page{},
	}
}

var _ indexclient.Client = (*Service)(nil)

// SetSearch sets the search string for the next query.
func (s *Service) SetSearch(text string) { s.search = text }

// SetRequestFlags selects the result columns for the next query.
func (s *Service) SetRequestFlags(flags indexclient.RequestFlag) { s.flags = flags }

// SetSort sets the sort order for the next query.
func (s *Service) SetSort(key indexclient.SortKey) { s.sort = key }

func (s *Service) SetMatchCase(enabled bool)      { s.matchCase = enabled }
func (s *Service) SetMatchPath(enabled bool)      { s.matchPath = enabled }
func (s *Service) SetMatchWholeWord(enabled bool) { s.matchWholeWord = enabled }
func (s *Service) SetMatchRegex(enabled bool)     { s.matchRegex = enabled }

// SetMax caps the number of results materialized per query.
func (s *Service) SetMax(count int) { s.max = count }

// SetOffset skips the first count results of the next query.
func (s *Service) SetOffset(count int) { s.offset = count }

// Query executes the configured query. Local queries always complete
// synchronously, so wait only exists to satisfy the contract.
func (s *Service) Query(_ bool) bool {
	var spec Spec
	s.hlTerms = nil
	s.hlRegex = nil

	if s.matchRegex {
		// Regex mode disables the mini-language; the whole search
		// string is one pattern
		spec = Spec{Regex: s.search}
	} else {
		var err error
		spec, err = ParseQuery(s.search)
		if err != nil {
			logging.Debug("Query rejected: %v", err)
			s.fail(indexclient.CodeInvalidCall)
			return false
		}
	}

	spec.MatchCase = s.matchCase
	spec.MatchPath = s.matchPath
	spec.MatchWholeWord = s.matchWholeWord && !s.matchRegex
	spec.Sort = s.sort
	spec.Limit = s.max
	spec.Offset = s.offset

	page, err := s.store.Search(spec)
	if err != nil {
		logging.Error("Query failed for %q: %v", s.search, err)
		s.fail(classifyError(err))
		return false
	}

	s.page = page
	s.hlTerms = spec.Terms
	if spec.Regex != "" {
		pattern := spec.Regex
		if !spec.MatchCase {
			pattern = "(?i)" + pattern
		}
		// Search already validated the pattern
		s.hlRegex, _ = regexp.Compile(pattern)
	}
	s.lastError = indexclient.CodeOK
	return true
}

func (s *Service) fail(code indexclient.ErrorCode) {
	s.page = &Page{}
	s.lastError = code
}

// classifyError maps store failures onto the service error enumeration.
func classifyError(err error) indexclient.ErrorCode {
	switch {
	case errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed"):
		return indexclient.CodeIPCUnavailable
	default:
		return indexclient.CodeInvalidCall
	}
}

// GetNumResults returns the number of results in the current page.
func (s *Service) GetNumResults() int { return len(s.page.Items) }

// GetTotalResults returns the total number of matches, independent of the
// paging window.
func (s *Service) GetTotalResults() int { return s.page.Total }

func (s *Service) result(index int) (Result, bool) {
	if index < 0 || index >= len(s.page.Items) {
		s.lastError = indexclient.CodeInvalidIndex
		return Result{}, false
	}
	return s.page.Items[index], true
}

// GetResultFullPath returns the full path column for the result at index.
func (s *Service) GetResultFullPath(index int) string {
	if s.flags&indexclient.RequestFullPath == 0 {
		return ""
	}
	r, ok := s.result(index)
	if !ok {
		return ""
	}
	return r.Path
}

// GetResultHighlightedPath returns the path with matched spans wrapped
// in '*' markers.
func (s *Service) GetResultHighlightedPath(index int) string {
	if s.flags&indexclient.RequestHighlightedPath == 0 {
		return ""
	}
	r, ok := s.result(index)
	if !ok {
		return ""
	}
	return s.highlightColumn(r.Path, s.matchPath)
}

// GetResultHighlightedFileName returns the file name with matched spans
// wrapped in '*' markers.
func (s *Service) GetResultHighlightedFileName(index int) string {
	if s.flags&indexclient.RequestHighlightedFileName == 0 {
		return ""
	}
	r, ok := s.result(index)
	if !ok {
		return ""
	}
	return s.highlightColumn(r.Name, !s.matchPath)
}

// highlightColumn marks matches when the column is the one the query
// matched against; the other column passes through unmarked.
func (s *Service) highlightColumn(value string, matched bool) string {
	if !matched {
		return value
	}
	if s.hlRegex != nil {
		return highlightRegex(value, s.hlRegex)
	}
	return highlight(value, s.hlTerms, s.matchCase)
}

// IsFileResult reports whether the result at index is a file.
func (s *Service) IsFileResult(index int) bool {
	r, ok := s.result(index)
	return ok && r.IsFile
}

// GetResultSize returns the size column for the result at index.
func (s *Service) GetResultSize(index int) int64 {
	if s.flags&indexclient.RequestSize == 0 {
		return 0
	}
	r, ok := s.result(index)
	if !ok {
		return 0
	}
	return r.Size
}

// GetResultDateModified returns the modification time for the result at
// index.
func (s *Service) GetResultDateModified(index int) time.Time {
	if s.flags&indexclient.RequestDateModified == 0 {
		return time.Time{}
	}
	r, ok := s.result(index)
	if !ok {
		return time.Time{}
	}
	return r.ModTime
}

// GetLastError returns the error code of the most recent failure.
func (s *Service) GetLastError() indexclient.ErrorCode { return s.lastError }

func (s *Service) GetMajorVersion() int { return serviceVersionMajor }
func (s *Service) GetMinorVersion() int { return serviceVersionMinor }
func (s *Service) GetRevision() int     { return serviceVersionRevision }

// IncrementRunCount bumps the run counter of the given path.
func (s *Service) IncrementRunCount(path string) bool {
	found, err := s.store.IncrementRunCount(path)
	if err != nil {
		logging.Error("IncrementRunCount failed for %s: %v", path, err)
		s.lastError = classifyError(err)
		return false
	}
	return found
}

// IsFastSort reports whether the key is served by an indexed column.
func (s *Service) IsFastSort(key indexclient.SortKey) bool {
	switch key {
	case indexclient.SortNameAscending, indexclient.SortNameDescending,
		indexclient.SortPathAscending, indexclient.SortPathDescending,
		indexclient.SortExtensionAscending, indexclient.SortExtensionDescending,
		indexclient.SortTypeNameAscending, indexclient.SortTypeNameDescending,
		indexclient.SortDateModifiedAscending, indexclient.SortDateModifiedDescending,
		indexclient.SortRunCountAscending, indexclient.SortRunCountDescending:
		return true
	default:
		return false
	}
}

// SetInstanceName targets a named service instance. The local service is
// single-instance; the name only labels log lines.
func (s *Service) SetInstanceName(name string) {
	s.instance = name
	logging.Debug("Query service instance name set to %q", name)
}
