package handlers

import (
	"net/http"
	"strconv"
	"time"

	"filedex/internal/indexclient"
	"filedex/internal/session"
)

// SearchResultItem is one search result row on the wire.
type SearchResultItem struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
	IsFile   bool   `json:"isFile"`
	Size     int64  `json:"size"`
	Modified string `json:"modified,omitempty"`
}

// SearchResponse is one page of session results. Highlighted columns
// wrap matched spans in '*' markers.
type SearchResponse struct {
	Query      string             `json:"query"`
	Filter     string             `json:"filter"`
	Total      int                `json:"total"`
	TotalKnown bool               `json:"totalKnown"`
	Count      int                `json:"count"`
	Items      []SearchResultItem `json:"items"`
}

// Search updates the session parameters from the query string, waits for
// the resulting batch, and returns the buffered results.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if sortName := q.Get("sort"); sortName != "" {
		key, ok := parseSortKey(sortName)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown sort key: "+sortName)
			return
		}
		h.session.SetSort(key)
	}
	if v := q.Get("case"); v != "" {
		h.session.SetMatchCase(v == "true")
	}
	if v := q.Get("path"); v != "" {
		h.session.SetMatchPath(v == "true")
	}
	if v := q.Get("word"); v != "" {
		h.session.SetMatchWholeWord(v == "true")
	}
	if v := q.Get("regex"); v != "" {
		h.session.SetMatchRegex(v == "true")
	}

	h.session.SetSearchTerm(q.Get("q"))
	h.session.Wait()

	h.respondResults(w)
}

// LoadMore appends the next batch to the current result set.
func (h *Handlers) LoadMore(w http.ResponseWriter, _ *http.Request) {
	h.session.QueryBatch(true)
	h.session.Wait()

	h.respondResults(w)
}

// GetResults returns the buffered results without re-querying.
func (h *Handlers) GetResults(w http.ResponseWriter, _ *http.Request) {
	h.respondResults(w)
}

// ResetSearch clears the search state.
func (h *Handlers) ResetSearch(w http.ResponseWriter, _ *http.Request) {
	h.session.Reset()
	h.session.Wait()

	h.respondResults(w)
}

func (h *Handlers) respondResults(w http.ResponseWriter) {
	total, known := h.session.TotalResults()
	results := h.session.Buffer().Snapshot()

	items := make([]SearchResultItem, 0, len(results))
	for _, r := range results {
		item := SearchResultItem{
			Name:     r.HighlightedFileName,
			Path:     r.HighlightedPath,
			FullPath: r.FullPath,
			IsFile:   r.IsFile,
			Size:     r.Size,
		}
		if !r.DateModified.IsZero() {
			item.Modified = r.DateModified.Format(time.RFC3339)
		}
		items = append(items, item)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, SearchResponse{
		Query:      h.session.SearchTerm(),
		Filter:     h.session.CurrentFilter().Name,
		Total:      total,
		TotalKnown: known,
		Count:      len(items),
		Items:      items,
	})
}

// parseSortKey resolves an external sort key name.
func parseSortKey(name string) (indexclient.SortKey, bool) {
	for key := indexclient.SortKey(0); key.Valid(); key++ {
		if keyName, err := key.Name(); err == nil && keyName == name {
			return key, true
		}
	}
	return 0, false
}

// FilterInfo is one filter on the wire.
type FilterInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

// GetFilters lists the combined default-then-user filter sequence.
func (h *Handlers) GetFilters(w http.ResponseWriter, _ *http.Request) {
	current := h.session.CurrentFilter()

	var filters []FilterInfo
	for i, f := range h.combinedFilters() {
		filters = append(filters, FilterInfo{Index: i, Name: f.Name, Current: f == current})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, filters)
}

// SelectFilter activates a filter by flat index.
func (h *Handlers) SelectFilter(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter index")
		return
	}

	h.session.SelectFilterFromIndex(index)
	h.session.Wait()

	h.respondResults(w)
}

// CycleFilter advances the filter ring by the given offset (default 1).
func (h *Handlers) CycleFilter(w http.ResponseWriter, r *http.Request) {
	offset := 1
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid cycle offset")
			return
		}
		offset = parsed
	}

	h.session.CycleFilters(offset)
	h.session.Wait()

	h.respondResults(w)
}

func (h *Handlers) combinedFilters() []session.Filter {
	return append(append([]session.Filter{}, h.filters.DefaultFilters()...), h.filters.UserFilters()...)
}
