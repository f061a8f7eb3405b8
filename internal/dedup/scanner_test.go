package dedup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"filedex/internal/indexclient"
)

// fakeIndex answers the two query shapes the scanner issues over a fixed
// in-memory corpus: one parent enumeration and one ext+size+exclusion
// candidate lookup per file. Paths marked deleted disappear from both.
type fakeIndex struct {
	files   []Entry
	deleted map[string]bool

	failEnumerate  bool
	failCandidates bool

	search  string
	page    []Entry
	lastErr indexclient.ErrorCode
	queries []string
}

var _ indexclient.Client = (*fakeIndex)(nil)

func newFakeIndex(files ...Entry) *fakeIndex {
	return &fakeIndex{files: files, deleted: make(map[string]bool)}
}

func (c *fakeIndex) SetSearch(text string)                 { c.search = text }
func (c *fakeIndex) SetRequestFlags(indexclient.RequestFlag) {}
func (c *fakeIndex) SetSort(indexclient.SortKey)           {}
func (c *fakeIndex) SetMatchCase(bool)                     {}
func (c *fakeIndex) SetMatchPath(bool)                     {}
func (c *fakeIndex) SetMatchWholeWord(bool)                {}
func (c *fakeIndex) SetMatchRegex(bool)                    {}
func (c *fakeIndex) SetMax(int)                            {}
func (c *fakeIndex) SetOffset(int)                         {}

func (c *fakeIndex) Query(_ bool) bool {
	c.queries = append(c.queries, c.search)
	c.page = nil

	if strings.HasPrefix(c.search, `parent:"`) {
		if c.failEnumerate {
			c.lastErr = indexclient.CodeIPCUnavailable
			return false
		}
		root := c.search[len(`parent:"`):strings.LastIndex(c.search, `"`)]
		for _, f := range c.files {
			if !c.deleted[f.Path] && strings.HasPrefix(f.Path, root+"/") {
				c.page = append(c.page, f)
			}
		}
		return true
	}

	if c.failCandidates {
		c.lastErr = indexclient.CodeIPCUnavailable
		return false
	}

	ext, size, exclude := parseCandidateQuery(c.search)
	for _, f := range c.files {
		fext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Path)), ".")
		if !c.deleted[f.Path] && f.Path != exclude && fext == ext && f.Size == size {
			c.page = append(c.page, f)
		}
	}
	return true
}

// parseCandidateQuery picks apart `ext:<e> size:<n> !"<path>" file:`.
func parseCandidateQuery(search string) (ext string, size int64, exclude string) {
	for _, tok := range strings.Fields(search) {
		switch {
		case strings.HasPrefix(tok, "ext:"):
			ext = tok[len("ext:"):]
		case strings.HasPrefix(tok, "size:"):
			size, _ = strconv.ParseInt(tok[len("size:"):], 10, 64)
		case strings.HasPrefix(tok, `!"`):
			exclude = strings.TrimSuffix(tok[len(`!"`):], `"`)
		}
	}
	return ext, size, exclude
}

func (c *fakeIndex) GetNumResults() int                   { return len(c.page) }
func (c *fakeIndex) GetTotalResults() int                 { return len(c.page) }
func (c *fakeIndex) GetResultFullPath(i int) string       { return c.page[i].Path }
func (c *fakeIndex) GetResultHighlightedPath(i int) string { return c.page[i].Path }
func (c *fakeIndex) GetResultHighlightedFileName(i int) string {
	return filepath.Base(c.page[i].Path)
}
func (c *fakeIndex) IsFileResult(int) bool                 { return true }
func (c *fakeIndex) GetResultSize(i int) int64             { return c.page[i].Size }
func (c *fakeIndex) GetResultDateModified(int) time.Time   { return time.Time{} }
func (c *fakeIndex) GetLastError() indexclient.ErrorCode   { return c.lastErr }
func (c *fakeIndex) GetMajorVersion() int                  { return 1 }
func (c *fakeIndex) GetMinorVersion() int                  { return 5 }
func (c *fakeIndex) GetRevision() int                      { return 0 }
func (c *fakeIndex) IncrementRunCount(string) bool         { return true }
func (c *fakeIndex) IsFastSort(indexclient.SortKey) bool   { return true }
func (c *fakeIndex) SetInstanceName(string)                {}

// rejectAll is a Resolver that always keeps the inspected file.
type rejectAll struct{}

func (rejectAll) Resolve(Entry, []Entry, []Entry) bool { return false }

// newTestScanner wires a scanner whose deletions only touch the fake
// corpus.
func newTestScanner(t *testing.T, index *fakeIndex, policy Policy) (*Scanner, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "reports")
	s := NewScanner(index, NewReportWriter(dir), policy)
	s.remove = func(path string) error {
		index.deleted[path] = true
		return nil
	}
	return s, dir
}

func readReport(t *testing.T, dir, report string) []string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, report))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("reading %s: %v", report, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// TestScanInteractiveReject tests the classification of a small corpus
// under an always-reject resolver: same-size same-extension files land
// in duplicates, the rest in unique.
func TestScanInteractiveReject(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(
		Entry{Path: "/r/x", Size: 10},
		Entry{Path: "/r/y", Size: 10},
		Entry{Path: "/r/z", Size: 20},
	)
	s, dir := newTestScanner(t, index, Policy{Resolver: rejectAll{}})

	summary, err := s.Scan("/r")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if summary.Scanned != 3 || summary.Duplicates != 2 || summary.Unique != 1 || summary.Deleted != 0 {
		t.Fatalf("summary = %+v, want 3 scanned, 2 duplicates, 1 unique, 0 deleted", summary)
	}

	if got := readReport(t, dir, DuplicatesReport); len(got) != 2 || got[0] != "/r/x 10" || got[1] != "/r/y 10" {
		t.Errorf("duplicates report = %v", got)
	}
	if got := readReport(t, dir, UniqueReport); len(got) != 1 || got[0] != "/r/z 20" {
		t.Errorf("unique report = %v", got)
	}
	if got := readReport(t, dir, DeletedReport); got != nil {
		t.Errorf("deleted report = %v, want none", got)
	}
	if got := readReport(t, dir, AllFilesReport); len(got) != 3 {
		t.Errorf("all-files report = %v, want 3 lines", got)
	}
}

// TestScanAutoSameName tests automatic same-name deletion: the inspected
// file with a same-named candidate is deleted; the candidate itself is
// classified on its own pass and, lacking a surviving same-name match,
// remains a duplicate.
func TestScanAutoSameName(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(
		Entry{Path: "/r/x", Size: 10},
		Entry{Path: "/r/y", Size: 10},
		Entry{Path: "/r/z", Size: 20},
		Entry{Path: "/r/sub/x", Size: 10},
	)
	s, dir := newTestScanner(t, index, Policy{AutoDeleteSameName: true})

	summary, err := s.Scan("/r")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if summary.Deleted != 1 || summary.Duplicates != 2 || summary.Unique != 1 {
		t.Fatalf("summary = %+v, want 1 deleted, 2 duplicates, 1 unique", summary)
	}

	if got := readReport(t, dir, DeletedReport); len(got) != 1 || got[0] != "/r/x 10" {
		t.Errorf("deleted report = %v, want [/r/x 10]", got)
	}
	if got := readReport(t, dir, DuplicatesReport); len(got) != 2 || got[0] != "/r/y 10" || got[1] != "/r/sub/x 10" {
		t.Errorf("duplicates report = %v, want [/r/y 10, /r/sub/x 10]", got)
	}
	if !index.deleted["/r/x"] {
		t.Error("inspected file was not removed")
	}
}

// TestScanDeletionFailure tests that a file whose deletion fails is
// recorded exactly once, in duplicates, and nowhere else.
func TestScanDeletionFailure(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(
		Entry{Path: "/r/x", Size: 10},
		Entry{Path: "/r/sub/x", Size: 10},
	)
	s, dir := newTestScanner(t, index, Policy{AutoDeleteSameName: true})
	s.remove = func(path string) error {
		return errors.New("permission denied")
	}

	summary, err := s.Scan("/r")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if summary.Deleted != 0 {
		t.Errorf("summary.Deleted = %d, want 0", summary.Deleted)
	}
	if summary.Duplicates != 2 {
		t.Errorf("summary.Duplicates = %d, want 2", summary.Duplicates)
	}

	dups := readReport(t, dir, DuplicatesReport)
	seen := 0
	for _, line := range dups {
		if line == "/r/x 10" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("failed deletion recorded %d times in duplicates, want exactly 1", seen)
	}
	if got := readReport(t, dir, DeletedReport); got != nil {
		t.Errorf("deleted report = %v, want none", got)
	}
	if got := readReport(t, dir, UniqueReport); got != nil {
		t.Errorf("unique report = %v, want none", got)
	}
}

// TestScanQueryFailureAborts tests that a failed candidate lookup aborts
// the whole scan with a surfaced error.
func TestScanQueryFailureAborts(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(Entry{Path: "/r/x", Size: 10})
	index.failCandidates = true
	s, dir := newTestScanner(t, index, Policy{})

	if _, err := s.Scan("/r"); err == nil {
		t.Fatal("Scan succeeded despite failing candidate queries")
	}

	// The enumeration persisted, but no partition was flushed
	if got := readReport(t, dir, AllFilesReport); len(got) != 1 {
		t.Errorf("all-files report = %v, want 1 line", got)
	}
	for _, report := range []string{DuplicatesReport, UniqueReport, DeletedReport} {
		if got := readReport(t, dir, report); got != nil {
			t.Errorf("%s = %v after aborted scan, want none", report, got)
		}
	}
}

// TestScanEnumerationFailureAborts tests that a failed enumeration
// surfaces before anything is written.
func TestScanEnumerationFailureAborts(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(Entry{Path: "/r/x", Size: 10})
	index.failEnumerate = true
	s, dir := newTestScanner(t, index, Policy{})

	if _, err := s.Scan("/r"); err == nil {
		t.Fatal("Scan succeeded despite a failing enumeration")
	}
	if got := readReport(t, dir, AllFilesReport); got != nil {
		t.Errorf("all-files report = %v after failed enumeration, want none", got)
	}
}

// TestScanPagedReports tests that report lines written across multiple
// pages survive in enumeration order with no loss or duplication.
func TestScanPagedReports(t *testing.T) {
	t.Parallel()

	// Distinct sizes make every file unique; more files than one page
	// forces several flushes
	count := pageSize + 50
	files := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		files = append(files, Entry{Path: fmt.Sprintf("/r/f%04d", i), Size: int64(i)})
	}
	index := newFakeIndex(files...)
	s, dir := newTestScanner(t, index, Policy{})

	summary, err := s.Scan("/r")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if summary.Unique != count {
		t.Fatalf("summary.Unique = %d, want %d", summary.Unique, count)
	}

	lines := readReport(t, dir, UniqueReport)
	if len(lines) != count {
		t.Fatalf("unique report has %d lines, want %d", len(lines), count)
	}
	for i, line := range lines {
		expected := fmt.Sprintf("/r/f%04d %d", i, i)
		if line != expected {
			t.Fatalf("line %d = %q, want %q", i, line, expected)
		}
	}
}

// TestScanOnDeleteHook tests the index-eviction hook.
func TestScanOnDeleteHook(t *testing.T) {
	t.Parallel()

	index := newFakeIndex(
		Entry{Path: "/r/x", Size: 10},
		Entry{Path: "/r/sub/x", Size: 10},
	)
	var evicted []string
	s, _ := newTestScanner(t, index, Policy{
		AutoDeleteSameName: true,
		OnDelete:           func(path string) { evicted = append(evicted, path) },
	})

	if _, err := s.Scan("/r"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(evicted) != 1 || evicted[0] != "/r/x" {
		t.Errorf("OnDelete saw %v, want [/r/x]", evicted)
	}
}
