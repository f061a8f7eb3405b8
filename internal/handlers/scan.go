package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"filedex/internal/dedup"
	"filedex/internal/logging"
)

// ScanRequest starts a duplicate scan. Root defaults to the configured
// root directory.
type ScanRequest struct {
	Root string `json:"root"`
}

// ScanStatusResponse reports the state of the one-at-a-time scan slot.
type ScanStatusResponse struct {
	Running      bool           `json:"running"`
	Root         string         `json:"root,omitempty"`
	LastSummary  *dedup.Summary `json:"lastSummary,omitempty"`
	LastError    string         `json:"lastError,omitempty"`
	LastFinished string         `json:"lastFinished,omitempty"`
	ReportDir    string         `json:"reportDir"`
}

// StartScan launches a duplicate scan on a background worker. Only one
// scan runs at a time; a second request while one is in flight reports
// busy.
func (h *Handlers) StartScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid scan request body")
		return
	}

	root := req.Root
	if root == "" {
		root = h.config.RootDir
	}

	h.scanMu.Lock()
	if h.scanning {
		h.scanMu.Unlock()
		writeError(w, http.StatusConflict, "a scan is already running")
		return
	}
	h.scanning = true
	h.lastScanRoot = root
	h.scanMu.Unlock()

	go h.runScan(root)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "scan started", "root": root})
}

func (h *Handlers) runScan(root string) {
	summary, err := h.newScanner().Scan(root)

	h.scanMu.Lock()
	defer h.scanMu.Unlock()

	h.scanning = false
	h.lastScanDone = time.Now()
	if err != nil {
		logging.Error("Duplicate scan of %s failed: %v", root, err)
		h.lastScan = nil
		h.lastScanErr = err.Error()
		return
	}
	h.lastScan = summary
	h.lastScanErr = ""
}

// ScanStatus reports whether a scan is running and the outcome of the
// last one.
func (h *Handlers) ScanStatus(w http.ResponseWriter, _ *http.Request) {
	h.scanMu.Lock()
	response := ScanStatusResponse{
		Running:     h.scanning,
		Root:        h.lastScanRoot,
		LastSummary: h.lastScan,
		LastError:   h.lastScanErr,
		ReportDir:   h.config.ReportDir,
	}
	if !h.lastScanDone.IsZero() {
		response.LastFinished = h.lastScanDone.Format(time.RFC3339)
	}
	h.scanMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
