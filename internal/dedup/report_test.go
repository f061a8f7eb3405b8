package dedup

import (
	"os"
	"path/filepath"
	"testing"
)

// TestReportAppendRoundTrip tests that entries appended across several
// calls are all present, in append order, with nothing lost or doubled.
func TestReportAppendRoundTrip(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	w := NewReportWriter(dir)

	w.Append(DuplicatesReport, []Entry{
		{Path: "/media/a.txt", Size: 10},
		{Path: "/media/b.txt", Size: 10},
	})
	w.Append(DuplicatesReport, []Entry{
		{Path: "/media/c.txt", Size: 20},
	})

	data, err := os.ReadFile(filepath.Join(dir, DuplicatesReport))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	expected := "/media/a.txt 10\n/media/b.txt 10\n/media/c.txt 20\n"
	if string(data) != expected {
		t.Errorf("report = %q, want %q", data, expected)
	}
}

// TestReportAppendCreatesDirectory tests destination creation on first
// append.
func TestReportAppendCreatesDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "reports")
	w := NewReportWriter(dir)

	w.Append(UniqueReport, []Entry{{Path: "/media/a.txt", Size: 1}})

	if _, err := os.Stat(filepath.Join(dir, UniqueReport)); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

// TestReportAppendEmpty tests that an empty append touches nothing.
func TestReportAppendEmpty(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "reports")
	w := NewReportWriter(dir)

	w.Append(DeletedReport, nil)

	if _, err := os.Stat(filepath.Join(dir, DeletedReport)); !os.IsNotExist(err) {
		t.Errorf("empty append created the report file: %v", err)
	}
}
