// Package api implements the REST handler for the wallet service together
// with the HTTP server configuration shared by the daemon and its tests.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sonson0910/Moderntensor/backup"
	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/sonson0910/Moderntensor/metrics"
)

// maxBodySize is the maximum allowed request body size (1MB).
const maxBodySize = 1024 * 1024

// Handler processes HTTP requests for the wallet service. It wraps the
// wallet store and, when configured, the backup service. Import conflicts
// are decided by the request's overwrite flag since there is no interactive
// prompt over HTTP.
type Handler struct {
	wallet  interfaces.WalletStore
	backups *backup.Service
	log     *slog.Logger
}

// NewHandler creates a new wallet request handler. backups may be nil, in
// which case the backup endpoints report that backups are not configured.
func NewHandler(wallet interfaces.WalletStore, backups *backup.Service, log *slog.Logger) *Handler {
	return &Handler{
		wallet:  wallet,
		backups: backups,
		log:     log,
	}
}

// RegisterRoutes mounts all wallet endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/wallets", h.HandleListWallets)
	r.Post("/api/v1/coldkeys", h.HandleCreateColdkey)
	r.Post("/api/v1/coldkeys/{name}/load", h.HandleLoadColdkey)
	r.Post("/api/v1/coldkeys/{name}/hotkeys", h.HandleGenerateHotkey)
	r.Post("/api/v1/coldkeys/{name}/hotkeys/{hotkey_name}/import", h.HandleImportHotkey)
	r.Post("/api/v1/coldkeys/{name}/backup", h.HandleExportBackup)
	r.Post("/api/v1/backups/{snapshot_id}/restore", h.HandleRestoreBackup)
}

type createColdkeyRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loadColdkeyRequest struct {
	Password string `json:"password"`
}

type generateHotkeyRequest struct {
	HotkeyName string `json:"hotkey_name"`
}

type generateHotkeyResponse struct {
	HotkeyName    string `json:"hotkey_name"`
	EncryptedData string `json:"encrypted_data"`
}

type importHotkeyRequest struct {
	EncryptedData string `json:"encrypted_data"`
	Overwrite     bool   `json:"overwrite"`
}

type exportBackupResponse struct {
	SnapshotID string `json:"snapshot_id"`
	ManifestID string `json:"manifest_id"`
}

type restoreBackupRequest struct {
	Name      string `json:"name"`
	Overwrite bool   `json:"overwrite"`
}

type restoreBackupResponse struct {
	Name string `json:"name"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// HandleListWallets returns every coldkey with its hotkey names and
// addresses. Nothing is decrypted.
//
// URL format: GET /api/v1/wallets
func (h *Handler) HandleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := h.wallet.LoadAllWallets()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if wallets == nil {
		wallets = []interfaces.WalletInfo{}
	}
	h.writeJSON(w, http.StatusOK, wallets)
}

// HandleCreateColdkey creates a new coldkey.
//
// URL format: POST /api/v1/coldkeys
// Request body: {"name": ..., "password": ...}
// Returns 409 if the coldkey already exists.
func (h *Handler) HandleCreateColdkey(w http.ResponseWriter, r *http.Request) {
	var req createColdkeyRequest
	if err := h.readJSON(w, r, &req); err != nil {
		return
	}

	err := h.wallet.CreateColdkey(req.Name, req.Password)
	metrics.Observe(metrics.ColdkeysCreated, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, statusResponse{Status: "created"})
}

// HandleLoadColdkey loads an existing coldkey into the in-memory index.
//
// URL format: POST /api/v1/coldkeys/{name}/load
// Request body: {"password": ...}
// Returns 404 for an unknown coldkey and 401 for a wrong password.
func (h *Handler) HandleLoadColdkey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req loadColdkeyRequest
	if err := h.readJSON(w, r, &req); err != nil {
		return
	}

	err := h.wallet.LoadColdkey(name, req.Password)
	metrics.Observe(metrics.ColdkeysLoaded, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{Status: "loaded"})
}

// HandleGenerateHotkey derives a new hotkey under a loaded coldkey and
// returns its encrypted payload.
//
// URL format: POST /api/v1/coldkeys/{name}/hotkeys
// Request body: {"hotkey_name": ...}
// Returns 404 if the coldkey is not loaded, 409 if the hotkey exists.
func (h *Handler) HandleGenerateHotkey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req generateHotkeyRequest
	if err := h.readJSON(w, r, &req); err != nil {
		return
	}

	encrypted, err := h.wallet.GenerateHotkey(name, req.HotkeyName)
	metrics.Observe(metrics.HotkeysGenerated, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, generateHotkeyResponse{
		HotkeyName:    req.HotkeyName,
		EncryptedData: encrypted,
	})
}

// HandleImportHotkey imports an encrypted hotkey payload under a loaded
// coldkey. A conflicting import without the overwrite flag returns 409.
//
// URL format: POST /api/v1/coldkeys/{name}/hotkeys/{hotkey_name}/import
// Request body: {"encrypted_data": ..., "overwrite": bool}
func (h *Handler) HandleImportHotkey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	hotkeyName := chi.URLParam(r, "hotkey_name")

	var req importHotkeyRequest
	if err := h.readJSON(w, r, &req); err != nil {
		return
	}

	err := h.wallet.ImportHotkey(name, req.EncryptedData, hotkeyName, req.Overwrite)
	metrics.Observe(metrics.HotkeysImported, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, statusResponse{Status: "imported"})
}

// HandleExportBackup exports a coldkey directory as a content-addressed
// snapshot on the configured backup backend.
//
// URL format: POST /api/v1/coldkeys/{name}/backup
func (h *Handler) HandleExportBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		http.Error(w, "backup storage not configured", http.StatusNotImplemented)
		return
	}

	name := chi.URLParam(r, "name")

	receipt, err := h.backups.Export(r.Context(), name)
	metrics.Observe(metrics.BackupsExported, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, exportBackupResponse{
		SnapshotID: receipt.SnapshotID.String(),
		ManifestID: receipt.ManifestID.String(),
	})
}

// HandleRestoreBackup restores a snapshot into the wallet base directory.
// The optional name field restores under a different coldkey name.
//
// URL format: POST /api/v1/backups/{snapshot_id}/restore
// Request body: {"name": ..., "overwrite": bool}
func (h *Handler) HandleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		http.Error(w, "backup storage not configured", http.StatusNotImplemented)
		return
	}

	id, err := interfaces.NewContentIDFromHex(chi.URLParam(r, "snapshot_id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid snapshot id: %v", err), http.StatusBadRequest)
		return
	}

	var req restoreBackupRequest
	if err := h.readJSON(w, r, &req); err != nil {
		return
	}

	name, err := h.backups.Restore(r.Context(), id, req.Name, req.Overwrite)
	metrics.Observe(metrics.BackupsRestored, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, restoreBackupResponse{Name: name})
}

// readJSON decodes a size-limited JSON request body into dst, answering 400
// on malformed input.
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		http.Error(w, "invalid JSON request body", http.StatusBadRequest)
		return err
	}

	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}

// writeError maps wallet sentinel errors to HTTP status codes.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, interfaces.ErrColdkeyExists),
		errors.Is(err, interfaces.ErrHotkeyExists):
		status = http.StatusConflict
	case errors.Is(err, interfaces.ErrColdkeyNotFound),
		errors.Is(err, interfaces.ErrColdkeyNotLoaded),
		errors.Is(err, interfaces.ErrHotkeyNotFound),
		errors.Is(err, interfaces.ErrContentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, interfaces.ErrInvalidPassword):
		status = http.StatusUnauthorized
	case errors.Is(err, interfaces.ErrDecryptionFailed):
		status = http.StatusBadRequest
	case errors.Is(err, interfaces.ErrInvalidKeyName):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		h.log.Debug("Request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}

	http.Error(w, err.Error(), status)
}
