package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"filedex/internal/dedup"
	"filedex/internal/index"
	"filedex/internal/logging"
	"filedex/internal/session"
	"filedex/internal/startup"
)

// Handlers bundles the HTTP handlers and their collaborators.
type Handlers struct {
	session *session.Session
	filters session.FilterProvider
	store   *index.Store
	walker  *index.Walker
	config  *startup.Config

	// newScanner builds a fresh scanner per scan run; scanners own a
	// stateful client and cannot be reused concurrently
	newScanner func() *dedup.Scanner

	startTime time.Time

	// one scan at a time
	scanMu       sync.Mutex
	scanning     bool
	lastScan     *dedup.Summary
	lastScanErr  string
	lastScanRoot string
	lastScanDone time.Time
}

// New creates the handler set.
func New(sess *session.Session, filters session.FilterProvider, store *index.Store, walker *index.Walker, config *startup.Config, newScanner func() *dedup.Scanner) *Handlers {
	return &Handlers{
		session:    sess,
		filters:    filters,
		store:      store,
		walker:     walker,
		config:     config,
		newScanner: newScanner,
		startTime:  time.Now(),
	}
}

// writeJSON writes v as a JSON response body.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode JSON response: %v", err)
	}
}

// writeError writes a JSON error with the given status.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": message})
}

// GetVersion returns build information.
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}

// StatsResponse summarizes the index.
type StatsResponse struct {
	TotalEntries int    `json:"totalEntries"`
	LastIndexed  string `json:"lastIndexed,omitempty"`
	Indexing     bool   `json:"indexing"`
}

// GetStats returns index statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	count, err := h.store.CountEntries()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read index stats")
		return
	}

	response := StatsResponse{
		TotalEntries: count,
		Indexing:     h.walker.IsWalking(),
	}
	if last := h.walker.LastWalkTime(); !last.IsZero() {
		response.LastIndexed = last.Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// TriggerReindex requests an immediate background re-walk.
func (h *Handlers) TriggerReindex(w http.ResponseWriter, _ *http.Request) {
	h.walker.TriggerWalk()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "reindex started"})
}
