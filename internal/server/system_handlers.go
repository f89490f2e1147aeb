package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/watchdeck/internal/config"
	"github.com/aristath/watchdeck/internal/persistence"
	"github.com/aristath/watchdeck/internal/store"
)

// SystemHandlers serves device status and snapshot export/import.
type SystemHandlers struct {
	store       *store.Store
	persistence *persistence.Repository
	cfg         *config.Config
	log         zerolog.Logger
	startedAt   time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(st *store.Store, repo *persistence.Repository, cfg *config.Config, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		store:       st,
		persistence: repo,
		cfg:         cfg,
		log:         log.With().Str("component", "system").Logger(),
		startedAt:   time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status.
// Returns host resource usage plus store counters, the data the settings
// screen shows in its device info panel.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"alerts":         len(h.store.Alerts()),
		"notifications":  len(h.store.Notifications()),
		"groups":         len(h.store.Groups()),
	}

	if percents, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_used_mb"] = vm.Used / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, status)
}

// snapshotRequest names the snapshot file. Paths are confined to the data
// directory; only the base name of the supplied value is used.
type snapshotRequest struct {
	Filename string `json:"filename"`
}

func (req *snapshotRequest) path(dataDir string) string {
	name := req.Filename
	if name == "" {
		name = "watchdeck-snapshot.bin"
	}
	return filepath.Join(dataDir, filepath.Base(name))
}

// HandleExportSnapshot handles POST /api/system/export
func (h *SystemHandlers) HandleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := req.path(h.cfg.DataDir)
	meta, err := h.persistence.ExportSnapshot(path)
	if err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("Snapshot export failed")
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "exported",
		"path":   path,
		"meta":   meta,
	})
}

// HandleImportSnapshot handles POST /api/system/import.
// The imported state replaces the persisted blob and the live store is
// rehydrated from it. The notification feed is untouched.
func (h *SystemHandlers) HandleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	path := req.path(h.cfg.DataDir)
	state, err := h.persistence.ImportSnapshot(path)
	if err != nil {
		h.log.Error().Err(err).Str("path", path).Msg("Snapshot import failed")
		http.Error(w, "Import failed", http.StatusBadRequest)
		return
	}

	h.store.Hydrate(state.Alerts, state.Groups, state.Preferences)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "imported",
		"path":           path,
		"schema_version": state.SchemaVersion,
		"alerts":         len(state.Alerts),
		"groups":         len(state.Groups),
	})
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
