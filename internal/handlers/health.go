package handlers

import (
	"net/http"
	"runtime"
	"time"

	"filedex/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusStarting = "starting"
	statusDegraded = "degraded"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status           string `json:"status"`
	Ready            bool   `json:"ready"`
	Version          string `json:"version"`
	Uptime           string `json:"uptime"`
	Indexing         bool   `json:"indexing"`
	LastIndexed      string `json:"lastIndexed,omitempty"`
	InitialWalkError string `json:"initialWalkError,omitempty"`

	EntriesIndexed int64 `json:"entriesIndexed"`
	TotalEntries   int   `json:"totalEntries,omitempty"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	ready := h.walker.Ready()

	response := HealthResponse{
		Ready:          ready,
		Version:        startup.Version,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		Indexing:       h.walker.IsWalking(),
		EntriesIndexed: h.walker.FilesIndexed(),
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		NumGoroutine:   runtime.NumGoroutine(),
	}

	if ready {
		response.Status = statusHealthy
	} else {
		response.Status = statusStarting
	}

	if last := h.walker.LastWalkTime(); !last.IsZero() {
		response.LastIndexed = last.Format(time.RFC3339)
	}

	if err := h.walker.InitialError(); err != nil {
		response.InitialWalkError = err.Error()
		response.Status = statusDegraded
	}

	if count, err := h.store.CountEntries(); err == nil {
		response.TotalEntries = count
	}

	w.Header().Set("Content-Type", "application/json")
	if !ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if the
// server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when the initial walk has completed
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.walker.Ready() {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{"status": "ready"})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_ready"})
	}
}
