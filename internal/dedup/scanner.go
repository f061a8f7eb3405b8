package dedup

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"filedex/internal/filesystem"
	"filedex/internal/indexclient"
	"filedex/internal/logging"
	"filedex/internal/metrics"
)

const (
	// Files classified per report flush
	pageSize = 200

	// Cap on the initial folder enumeration
	enumerationCap = 100000
)

// Resolver decides the fate of a file with duplicate candidates in
// interactive mode. Returning true deletes the inspected file; returning
// false records it as a duplicate.
type Resolver interface {
	Resolve(inspected Entry, sameName, differentName []Entry) bool
}

// Policy configures how the scanner resolves files that have duplicate
// candidates.
type Policy struct {
	// AutoDeleteSameName deletes the inspected file without prompting
	// whenever a candidate with the exact same file name exists.
	AutoDeleteSameName bool

	// Resolver handles the remaining cases interactively. With a nil
	// Resolver, unresolved files are recorded as duplicates.
	Resolver Resolver

	// OnDelete runs after each successful deletion, letting the caller
	// evict the path from a local index.
	OnDelete func(path string)
}

// Summary totals one completed scan.
type Summary struct {
	Scanned    int
	Unique     int
	Duplicates int
	Deleted    int
}

// Scanner partitions every file under a root folder into unique,
// duplicate, and deleted, writing the three reports incrementally after
// each page of files.
//
// Two files are duplicate candidates iff they share size and extension
// and have different paths; content is never compared, and the file name
// only sub-classifies candidates afterwards. The scanner issues strictly
// sequential queries: one enumeration, then one synchronous lookup per
// file. It has no cancellation; a failed query aborts the whole scan.
type Scanner struct {
	client  indexclient.Client
	reports *ReportWriter
	policy  Policy

	// stubbed in tests
	remove func(path string) error
}

// NewScanner creates a scanner issuing queries through client and
// writing reports through reports.
func NewScanner(client indexclient.Client, reports *ReportWriter, policy Policy) *Scanner {
	return &Scanner{
		client:  client,
		reports: reports,
		policy:  policy,
		remove: func(path string) error {
			return filesystem.RemoveWithRetry(path, filesystem.DefaultRetryConfig())
		},
	}
}

// pageAccumulator collects one page's classifications before the flush.
type pageAccumulator struct {
	duplicates []Entry
	uniques    []Entry
	deleted    []Entry
}

// Scan runs one full duplicate scan over the files beneath root.
func (s *Scanner) Scan(root string) (*Summary, error) {
	start := time.Now()
	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	logging.Info("Starting duplicate scan of %s", root)

	files, err := s.enumerate(root)
	if err != nil {
		metrics.ScanRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	s.reports.Append(AllFilesReport, files)
	logging.Info("Enumerated %d files under %s", len(files), root)

	summary := &Summary{Scanned: len(files)}

	for from := 0; from < len(files); from += pageSize {
		to := from + pageSize
		if to > len(files) {
			to = len(files)
		}

		var page pageAccumulator
		for _, file := range files[from:to] {
			candidates, err := s.candidates(file)
			if err != nil {
				metrics.ScanRunsTotal.WithLabelValues("failed").Inc()
				return nil, err
			}
			s.classify(file, candidates, &page)
		}

		s.reports.Append(DuplicatesReport, page.duplicates)
		s.reports.Append(UniqueReport, page.uniques)
		s.reports.Append(DeletedReport, page.deleted)

		summary.Duplicates += len(page.duplicates)
		summary.Unique += len(page.uniques)
		summary.Deleted += len(page.deleted)
	}

	duration := time.Since(start)
	metrics.ScanRunsTotal.WithLabelValues("completed").Inc()
	metrics.ScanDuration.Observe(duration.Seconds())

	logging.Info("Duplicate scan of %s complete in %v: %d scanned, %d unique, %d duplicates, %d deleted",
		root, duration, summary.Scanned, summary.Unique, summary.Duplicates, summary.Deleted)
	return summary, nil
}

// enumerate lists every file under root in one capped query.
func (s *Scanner) enumerate(root string) ([]Entry, error) {
	c := s.client
	c.SetSearch(`parent:"` + root + `" file:`)
	c.SetRequestFlags(indexclient.RequestFullPath | indexclient.RequestSize)
	c.SetSort(indexclient.SortPathAscending)
	c.SetMatchCase(false)
	c.SetMatchPath(false)
	c.SetMatchWholeWord(false)
	c.SetMatchRegex(false)
	c.SetMax(enumerationCap)
	c.SetOffset(0)

	if !c.Query(true) {
		return nil, fmt.Errorf("enumerating %s: %w", root, indexclient.LastError(c))
	}

	n := c.GetNumResults()
	files := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, Entry{
			Path: c.GetResultFullPath(i),
			Size: c.GetResultSize(i),
		})
	}
	return files, nil
}

// candidates looks up the duplicate candidates of one file: same
// extension, exact size, different path.
func (s *Scanner) candidates(file Entry) ([]Entry, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Path)), ".")

	c := s.client
	c.SetSearch(fmt.Sprintf(`ext:%s size:%d !"%s" file:`, ext, file.Size, file.Path))
	c.SetRequestFlags(indexclient.RequestFullPath | indexclient.RequestSize)
	c.SetOffset(0)
	c.SetMax(enumerationCap)

	if !c.Query(true) {
		return nil, fmt.Errorf("looking up candidates for %s: %w", file.Path, indexclient.LastError(c))
	}

	n := c.GetNumResults()
	candidates := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		candidates = append(candidates, Entry{
			Path: c.GetResultFullPath(i),
			Size: c.GetResultSize(i),
		})
	}
	return candidates, nil
}

// classify records the file into exactly one partition of the page.
func (s *Scanner) classify(file Entry, candidates []Entry, page *pageAccumulator) {
	if len(candidates) == 0 {
		page.uniques = append(page.uniques, file)
		metrics.ScanFilesClassified.WithLabelValues("unique").Inc()
		return
	}

	sameName, differentName := splitByName(file, candidates)

	switch {
	case s.policy.AutoDeleteSameName && len(sameName) > 0:
		s.deleteInspected(file, page)
	case s.policy.Resolver != nil:
		if s.policy.Resolver.Resolve(file, sameName, differentName) {
			s.deleteInspected(file, page)
		} else {
			page.duplicates = append(page.duplicates, file)
			metrics.ScanFilesClassified.WithLabelValues("duplicate").Inc()
		}
	default:
		page.duplicates = append(page.duplicates, file)
		metrics.ScanFilesClassified.WithLabelValues("duplicate").Inc()
	}
}

// deleteInspected deletes the inspected file. A failed deletion records
// the file as a duplicate instead; it is never retried and never lost.
func (s *Scanner) deleteInspected(file Entry, page *pageAccumulator) {
	if err := s.remove(file.Path); err != nil {
		logging.Error("Failed to delete %s: %v", file.Path, err)
		metrics.ScanDeletionFailures.Inc()
		page.duplicates = append(page.duplicates, file)
		metrics.ScanFilesClassified.WithLabelValues("duplicate").Inc()
		return
	}

	if s.policy.OnDelete != nil {
		s.policy.OnDelete(file.Path)
	}
	page.deleted = append(page.deleted, file)
	metrics.ScanFilesClassified.WithLabelValues("deleted").Inc()
}

// splitByName partitions candidates by exact file name equality with the
// inspected file.
func splitByName(file Entry, candidates []Entry) (sameName, differentName []Entry) {
	name := filepath.Base(file.Path)
	for _, c := range candidates {
		if filepath.Base(c.Path) == name {
			sameName = append(sameName, c)
		} else {
			differentName = append(differentName, c)
		}
	}
	return sameName, differentName
}
