package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/warp/workshop-engine/store/sqlite"
	"github.com/warp/workshop-engine/workshop"
)

// BackupStore keeps a history of full snapshots. Reset drops the persisted
// current snapshot and leaves the history alone.
type BackupStore interface {
	SaveBackup(ctx context.Context, snap workshop.Snapshot) (sqlite.Backup, error)
	ListBackups(ctx context.Context) ([]sqlite.Backup, error)
	LoadBackup(ctx context.Context, id int64) (workshop.Snapshot, error)
	Reset(ctx context.Context) error
}

var _ BackupStore = (*sqlite.Store)(nil)

// ExportBackup returns the current workshop as one JSON document, keyed
// by collection name.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="workshop-backup.json"`)
	writeJSON(w, http.StatusOK, snap)
}

// ImportBackup replaces the workshop with an uploaded snapshot. Older
// files with separate customers and suppliers are migrated on the way in.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	var snap workshop.Snapshot
	if err := decodeBody(r, &snap); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Engine.Restore(r.Context(), snap); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setScenario("")
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// CreateBackup stores the current workshop in the backup history.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	if !h.backupsEnabled(w, r) {
		return
	}
	snap, err := h.Engine.Snapshot(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	b, err := h.Backups.SaveBackup(r.Context(), snap)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("backup created", zap.Int64("backup_id", b.ID), zap.Int("size", b.Size))
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	if !h.backupsEnabled(w, r) {
		return
	}
	list, err := h.Backups.ListBackups(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

// RestoreBackup swaps a stored backup into the engine.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	if !h.backupsEnabled(w, r) {
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snap, err := h.Backups.LoadBackup(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Engine.Restore(r.Context(), snap); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.setScenario("")
	h.log.Info("backup restored", zap.Int64("backup_id", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

func (h *Handler) backupsEnabled(w http.ResponseWriter, r *http.Request) bool {
	if h.Backups == nil {
		writeJSON(w, http.StatusNotImplemented, ErrorResponse{
			Error: "backup history is not configured",
			Code:  "not_configured",
		})
		return false
	}
	return true
}
