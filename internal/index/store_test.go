package index

import (
	"context"
	"strings"
	"testing"
	"time"

	"filedex/internal/indexclient"
)

// newTestStore creates an in-memory store seeded with the given records.
func newTestStore(t *testing.T, records []FileRecord) *Store {
	t.Helper()

	store, err := NewStore(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing store: %v", err)
		}
	})

	seedStore(t, store, records)
	return store
}

func seedStore(t *testing.T, store *Store, records []FileRecord) {
	t.Helper()

	tx, err := store.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch failed: %v", err)
	}
	for i := range records {
		if err := store.UpsertFile(tx, &records[i]); err != nil {
			t.Fatalf("UpsertFile(%s) failed: %v", records[i].Path, err)
		}
	}
	if err := store.EndBatch(tx, nil); err != nil {
		t.Fatalf("EndBatch failed: %v", err)
	}
}

func testFile(name, parent, ext string, size int64) FileRecord {
	return FileRecord{
		Name:       name,
		Path:       parent + "/" + name,
		ParentPath: parent,
		Ext:        ext,
		IsFile:     true,
		Size:       size,
		ModTime:    time.Unix(1700000000, 0),
	}
}

func testFolder(name, parent string) FileRecord {
	return FileRecord{
		Name:       name,
		Path:       parent + "/" + name,
		ParentPath: parent,
		IsFile:     false,
		ModTime:    time.Unix(1700000000, 0),
	}
}

func testCorpus() []FileRecord {
	return []FileRecord{
		testFolder("music", "/media"),
		testFolder("docs", "/media"),
		testFile("song.mp3", "/media/music", "mp3", 4096),
		testFile("Song Two.mp3", "/media/music", "mp3", 4096),
		testFile("ballad.mp3", "/media/music", "mp3", 8192),
		testFile("report.txt", "/media/docs", "txt", 100),
		testFile("report-final.txt", "/media/docs", "txt", 100),
		testFile("notes.md", "/media/docs", "md", 50),
	}
}

func paths(page *Page) []string {
	out := make([]string, 0, len(page.Items))
	for _, r := range page.Items {
		out = append(out, r.Path)
	}
	return out
}

// TestSearchSubstring tests the SQL substring fast path.
func TestSearchSubstring(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Terms: []string{"song"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("got total=%d items=%d, want 2/2", page.Total, len(page.Items))
	}
	// Default order is name ASC, case-insensitive; the folded space in
	// "song two" sorts before the dot in "song."
	want := []string{"/media/music/Song Two.mp3", "/media/music/song.mp3"}
	got := paths(page)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("result %d = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestSearchMatchCase tests case-sensitive term matching.
func TestSearchMatchCase(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Terms: []string{"Song"}, MatchCase: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("got total=%d, want 1", page.Total)
	}
	if page.Items[0].Name != "Song Two.mp3" {
		t.Errorf("got %s, want Song Two.mp3", page.Items[0].Name)
	}
}

// TestSearchMatchPath tests term matching against the full path.
func TestSearchMatchPath(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Terms: []string{"docs"}, MatchPath: true, OnlyFiles: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("got total=%d, want 3", page.Total)
	}
}

// TestSearchDuplicateCandidates tests the ext + size + exclusion shape the
// duplicate scanner issues for each inspected file.
func TestSearchDuplicateCandidates(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	spec := Spec{
		Ext: "mp3", HasExt: true,
		Size: 4096, HasSize: true,
		Excludes:  []string{"/media/music/song.mp3"},
		OnlyFiles: true,
	}
	page, err := store.Search(spec)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("got total=%d, want 1", page.Total)
	}
	if page.Items[0].Path != "/media/music/Song Two.mp3" {
		t.Errorf("got %s, want /media/music/Song Two.mp3", page.Items[0].Path)
	}
}

// TestSearchParentEnumeration tests the parent-prefix enumeration shape the
// duplicate scanner uses to list all files under a root.
func TestSearchParentEnumeration(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Parent: "/media/docs", OnlyFiles: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("got total=%d, want 3", page.Total)
	}
	for _, r := range page.Items {
		if !strings.HasPrefix(r.Path, "/media/docs/") {
			t.Errorf("result %s outside parent", r.Path)
		}
	}
}

// TestSearchFolders tests the folder-only predicate.
func TestSearchFolders(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{OnlyFolders: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("got total=%d, want 2", page.Total)
	}
}

// TestSearchPaging tests limit and offset with total independent of the
// window.
func TestSearchPaging(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	first, err := store.Search(Spec{OnlyFiles: true, Limit: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if first.Total != 6 || len(first.Items) != 2 {
		t.Fatalf("first page: total=%d items=%d, want 6/2", first.Total, len(first.Items))
	}

	second, err := store.Search(Spec{OnlyFiles: true, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if second.Total != 6 || len(second.Items) != 2 {
		t.Fatalf("second page: total=%d items=%d, want 6/2", second.Total, len(second.Items))
	}
	if first.Items[0].Path == second.Items[0].Path {
		t.Error("offset did not advance the window")
	}

	// Offset past the end yields an empty page but the full total
	past, err := store.Search(Spec{OnlyFiles: true, Limit: 2, Offset: 100})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if past.Total != 6 || len(past.Items) != 0 {
		t.Fatalf("past-end page: total=%d items=%d, want 6/0", past.Total, len(past.Items))
	}
}

// TestSearchRegex tests the Go-side regex path, including paging with
// exact totals.
func TestSearchRegex(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Regex: `^report.*\.txt$`})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("got total=%d, want 2", page.Total)
	}

	windowed, err := store.Search(Spec{Regex: `\.mp3$`, Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if windowed.Total != 3 || len(windowed.Items) != 1 {
		t.Fatalf("got total=%d items=%d, want 3/1", windowed.Total, len(windowed.Items))
	}
}

// TestSearchRegexInvalid tests that a bad pattern surfaces as an error.
func TestSearchRegexInvalid(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	if _, err := store.Search(Spec{Regex: `[unclosed`}); err == nil {
		t.Fatal("Search with invalid regex did not return an error")
	}
}

// TestSearchWholeWord tests the Go-side whole-word path.
func TestSearchWholeWord(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	page, err := store.Search(Spec{Terms: []string{"report"}, MatchWholeWord: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	// "report.txt" and "report-final.txt" both delimit the word; nothing
	// embeds it inside a longer word in the corpus
	if page.Total != 2 {
		t.Fatalf("got total=%d, want 2", page.Total)
	}
}

// TestSearchSortOrders tests a sample of the sort key mappings.
func TestSearchSortOrders(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	bySizeDesc, err := store.Search(Spec{OnlyFiles: true, Sort: indexclient.SortSizeDescending})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if bySizeDesc.Items[0].Size != 8192 {
		t.Errorf("size-descending first result has size %d, want 8192", bySizeDesc.Items[0].Size)
	}

	byNameDesc, err := store.Search(Spec{OnlyFiles: true, Sort: indexclient.SortNameDescending})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if byNameDesc.Items[0].Name != "song.mp3" {
		t.Errorf("name-descending first result is %s, want song.mp3", byNameDesc.Items[0].Name)
	}
}

// TestUpsertUpdatesExisting tests that re-upserting a path updates in place.
func TestUpsertUpdatesExisting(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	updated := testFile("song.mp3", "/media/music", "mp3", 9999)
	seedStore(t, store, []FileRecord{updated})

	count, err := store.CountEntries()
	if err != nil {
		t.Fatalf("CountEntries failed: %v", err)
	}
	if count != 8 {
		t.Fatalf("got %d entries after re-upsert, want 8", count)
	}

	page, err := store.Search(Spec{Terms: []string{"song.mp3"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Items[0].Size != 9999 {
		t.Errorf("got size %d after re-upsert, want 9999", page.Items[0].Size)
	}
}

// TestRemovePath tests single-entry deletion.
func TestRemovePath(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	if err := store.RemovePath("/media/docs/notes.md"); err != nil {
		t.Fatalf("RemovePath failed: %v", err)
	}

	page, err := store.Search(Spec{Terms: []string{"notes"}})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("got total=%d after removal, want 0", page.Total)
	}
}

// TestIncrementRunCount tests the run counter and its existence report.
func TestIncrementRunCount(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	found, err := store.IncrementRunCount("/media/music/ballad.mp3")
	if err != nil {
		t.Fatalf("IncrementRunCount failed: %v", err)
	}
	if !found {
		t.Error("IncrementRunCount reported missing for an indexed path")
	}

	found, err = store.IncrementRunCount("/media/music/missing.mp3")
	if err != nil {
		t.Fatalf("IncrementRunCount failed: %v", err)
	}
	if found {
		t.Error("IncrementRunCount reported found for a missing path")
	}
}

// TestDeleteMissing tests cutoff-based cleanup of stale rows.
func TestDeleteMissing(t *testing.T) {
	t.Parallel()
	store := newTestStore(t, testCorpus())

	// Rows were stamped at seed time; a cutoff in the future marks all of
	// them stale, then re-seeding one record refreshes it past a second
	// cleanup
	cutoff := time.Now().Add(2 * time.Second)

	tx, err := store.BeginBatch()
	if err != nil {
		t.Fatalf("BeginBatch failed: %v", err)
	}
	deleted, err := store.DeleteMissing(tx, cutoff)
	if err != nil {
		t.Fatalf("DeleteMissing failed: %v", err)
	}
	if err := store.EndBatch(tx, nil); err != nil {
		t.Fatalf("EndBatch failed: %v", err)
	}
	if deleted != 8 {
		t.Errorf("got %d deleted rows, want 8", deleted)
	}

	count, err := store.CountEntries()
	if err != nil {
		t.Fatalf("CountEntries failed: %v", err)
	}
	if count != 0 {
		t.Errorf("got %d entries after cleanup, want 0", count)
	}
}
