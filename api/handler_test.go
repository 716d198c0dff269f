package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sonson0910/Moderntensor/backup"
	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/sonson0910/Moderntensor/keymanager"
	"github.com/sonson0910/Moderntensor/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	// A conflicting import without overwrite must answer 409, so the
	// prompt refuses instead of asking.
	wallet, err := keymanager.NewWalletManager(interfaces.Testnet, t.TempDir(),
		keymanager.RefuseConfirm(interfaces.ErrHotkeyExists), testLogger())
	require.NoError(t, err)

	backend, err := storage.NewFileBackend(t.TempDir(), testLogger())
	require.NoError(t, err)
	backups := backup.NewService(wallet.BaseDir(), backend, testLogger())

	handler := NewHandler(wallet, backups, testLogger())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateColdkeyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "mypwd"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate name conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "other"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid name is a client error
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "../escape", Password: "mypwd"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadColdkeyEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "mypwd"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/load",
		loadColdkeyRequest{Password: "mypwd"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/load",
		loadColdkeyRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/missing/load",
		loadColdkeyRequest{Password: "mypwd"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHotkeyEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "mypwd"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Generate
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys",
		generateHotkeyRequest{HotkeyName: "hk1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var generated generateHotkeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &generated))
	assert.Equal(t, "hk1", generated.HotkeyName)
	assert.NotEmpty(t, generated.EncryptedData)

	// Duplicate hotkey conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys",
		generateHotkeyRequest{HotkeyName: "hk1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unloaded coldkey
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/other/hotkeys",
		generateHotkeyRequest{HotkeyName: "hk1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Import under a new name succeeds
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys/hk2/import",
		importHotkeyRequest{EncryptedData: generated.EncryptedData})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Conflicting import without overwrite is refused
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys/hk2/import",
		importHotkeyRequest{EncryptedData: generated.EncryptedData})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// With the overwrite flag it goes through
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys/hk2/import",
		importHotkeyRequest{EncryptedData: generated.EncryptedData, Overwrite: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Garbage payload is a client error
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys/hk3/import",
		importHotkeyRequest{EncryptedData: "not-a-token"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListWalletsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "mypwd"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/hotkeys",
		generateHotkeyRequest{HotkeyName: "hk1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/wallets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var wallets []interfaces.WalletInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &wallets))
	require.Len(t, wallets, 1)
	assert.Equal(t, "myck", wallets[0].Name)
	require.Len(t, wallets[0].Hotkeys, 1)
	assert.Equal(t, "hk1", wallets[0].Hotkeys[0].Name)
	assert.NotEmpty(t, wallets[0].Hotkeys[0].Address)
}

func TestBackupEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/coldkeys",
		createColdkeyRequest{Name: "myck", Password: "mypwd"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/backup", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var exported exportBackupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	require.NotEmpty(t, exported.SnapshotID)

	// Restoring over the existing coldkey conflicts
	rec = doJSON(t, router, http.MethodPost, "/api/v1/backups/"+exported.SnapshotID+"/restore",
		restoreBackupRequest{})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Restoring under another name succeeds
	rec = doJSON(t, router, http.MethodPost, "/api/v1/backups/"+exported.SnapshotID+"/restore",
		restoreBackupRequest{Name: "copy"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var restored restoreBackupResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &restored))
	assert.Equal(t, "copy", restored.Name)

	// Malformed snapshot IDs are rejected up front
	rec = doJSON(t, router, http.MethodPost, "/api/v1/backups/zzzz/restore",
		restoreBackupRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A well-formed ID with no stored snapshot behind it is a miss, not a
	// server error.
	missingID := strings.Repeat("00", 32)
	rec = doJSON(t, router, http.MethodPost, "/api/v1/backups/"+missingID+"/restore",
		restoreBackupRequest{Name: "other"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBackupNotConfigured(t *testing.T) {
	wallet, err := keymanager.NewWalletManager(interfaces.Testnet, t.TempDir(),
		keymanager.AlwaysConfirm(true), testLogger())
	require.NoError(t, err)

	handler := NewHandler(wallet, nil, testLogger())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/coldkeys/myck/backup", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestInvalidJSONBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/coldkeys", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
