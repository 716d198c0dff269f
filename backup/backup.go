// Package backup exports and restores coldkey directories as
// content-addressed snapshots on pluggable storage backends.
//
// A snapshot bundles the three files of a coldkey directory: the KDF salt,
// the encrypted mnemonic and the hotkey registry. The mnemonic and hotkey
// payloads are already encrypted under the coldkey password, so a snapshot
// never exposes more than the on-disk layout does. Alongside each snapshot
// a small manifest record is stored so operators can identify what a given
// snapshot contains without fetching it.
package backup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sonson0910/Moderntensor/interfaces"
	"github.com/sonson0910/Moderntensor/keymanager"
)

// SnapshotVersion identifies the snapshot wire format.
const SnapshotVersion = 1

// Snapshot is the serialized form of a coldkey directory.
type Snapshot struct {
	Version     int       `json:"version"`
	ColdkeyName string    `json:"coldkey_name"`
	CreatedAt   time.Time `json:"created_at"`

	// Salt is the base64-encoded KDF salt (salt.bin).
	Salt string `json:"salt"`

	// Mnemonic is the encrypted mnemonic token (mnemonic.enc), already
	// a printable fernet token.
	Mnemonic string `json:"mnemonic"`

	// Hotkeys is the hotkey registry (hotkeys.json).
	Hotkeys interfaces.HotkeyRegistry `json:"hotkeys"`
}

// Manifest describes a stored snapshot without carrying its contents.
type Manifest struct {
	Version     int       `json:"version"`
	ColdkeyName string    `json:"coldkey_name"`
	SnapshotID  string    `json:"snapshot_id"`
	CreatedAt   time.Time `json:"created_at"`
	HotkeyNames []string  `json:"hotkey_names"`
	Backend     string    `json:"backend"`
}

// Receipt is returned by Export and identifies the stored artifacts.
type Receipt struct {
	SnapshotID interfaces.ContentID
	ManifestID interfaces.ContentID
}

// Service exports and restores coldkey snapshots.
type Service struct {
	baseDir string
	backend interfaces.StorageBackend
	log     *slog.Logger
	now     func() time.Time
}

// NewService creates a backup service for coldkey directories under baseDir.
func NewService(baseDir string, backend interfaces.StorageBackend, log *slog.Logger) *Service {
	return &Service{
		baseDir: baseDir,
		backend: backend,
		log:     log,
		now:     time.Now,
	}
}

// Export reads the coldkey directory and stores it as a snapshot.
// Returns interfaces.ErrColdkeyNotFound if the coldkey does not exist on disk.
func (s *Service) Export(ctx context.Context, coldkeyName string) (Receipt, error) {
	if err := interfaces.ValidateKeyName(coldkeyName); err != nil {
		return Receipt{}, err
	}

	coldkeyDir := filepath.Join(s.baseDir, coldkeyName)

	salt, err := os.ReadFile(filepath.Join(coldkeyDir, keymanager.SaltFileName))
	if os.IsNotExist(err) {
		return Receipt{}, interfaces.ErrColdkeyNotFound
	} else if err != nil {
		return Receipt{}, fmt.Errorf("failed to read salt: %w", err)
	}

	mnemonic, err := os.ReadFile(filepath.Join(coldkeyDir, keymanager.MnemonicFileName))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read encrypted mnemonic: %w", err)
	}

	registry, err := keymanager.ReadHotkeyRegistry(coldkeyDir)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to read hotkey registry: %w", err)
	}

	snapshot := Snapshot{
		Version:     SnapshotVersion,
		ColdkeyName: coldkeyName,
		CreatedAt:   s.now().UTC(),
		Salt:        base64.StdEncoding.EncodeToString(salt),
		Mnemonic:    string(mnemonic),
		Hotkeys:     registry,
	}

	snapshotData, err := json.Marshal(snapshot)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	snapshotID, err := s.backend.Store(ctx, snapshotData, interfaces.SnapshotType)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	hotkeyNames := make([]string, 0, len(registry.Hotkeys))
	for name := range registry.Hotkeys {
		hotkeyNames = append(hotkeyNames, name)
	}
	sort.Strings(hotkeyNames)

	manifest := Manifest{
		Version:     SnapshotVersion,
		ColdkeyName: coldkeyName,
		SnapshotID:  snapshotID.String(),
		CreatedAt:   snapshot.CreatedAt,
		HotkeyNames: hotkeyNames,
		Backend:     s.backend.Name(),
	}

	manifestData, err := json.Marshal(manifest)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to serialize manifest: %w", err)
	}

	manifestID, err := s.backend.Store(ctx, manifestData, interfaces.MetadataType)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to store manifest: %w", err)
	}

	s.log.Info("Exported coldkey snapshot",
		slog.String("coldkey_name", coldkeyName),
		slog.String("snapshot_id", snapshotID.String()),
		slog.String("backend", s.backend.Name()),
		slog.Int("hotkeys", len(registry.Hotkeys)))

	return Receipt{SnapshotID: snapshotID, ManifestID: manifestID}, nil
}

// Restore fetches a snapshot and materializes it as a coldkey directory.
// The coldkey name recorded in the snapshot is used unless overrideName is
// non-empty. Refuses to replace an existing coldkey directory unless
// overwrite is set; that failure is reported as ErrColdkeyExists.
func (s *Service) Restore(ctx context.Context, id interfaces.ContentID, overrideName string, overwrite bool) (string, error) {
	data, err := s.backend.Fetch(ctx, id, interfaces.SnapshotType)
	if err != nil {
		return "", fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return "", fmt.Errorf("failed to parse snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return "", fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	name := snapshot.ColdkeyName
	if overrideName != "" {
		name = overrideName
	}
	if err := interfaces.ValidateKeyName(name); err != nil {
		return "", err
	}

	salt, err := base64.StdEncoding.DecodeString(snapshot.Salt)
	if err != nil {
		return "", fmt.Errorf("failed to decode snapshot salt: %w", err)
	}
	if len(salt) != keymanager.SaltSize {
		return "", interfaces.ErrCorruptSalt
	}

	coldkeyDir := filepath.Join(s.baseDir, name)
	if _, err := os.Stat(coldkeyDir); err == nil && !overwrite {
		return "", fmt.Errorf("%w: %s", interfaces.ErrColdkeyExists, name)
	}

	if err := os.MkdirAll(coldkeyDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create coldkey directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(coldkeyDir, keymanager.SaltFileName), salt, 0o600); err != nil {
		return "", fmt.Errorf("failed to write salt: %w", err)
	}

	if err := os.WriteFile(filepath.Join(coldkeyDir, keymanager.MnemonicFileName), []byte(snapshot.Mnemonic), 0o600); err != nil {
		return "", fmt.Errorf("failed to write encrypted mnemonic: %w", err)
	}

	if err := keymanager.WriteHotkeyRegistry(coldkeyDir, snapshot.Hotkeys); err != nil {
		return "", fmt.Errorf("failed to write hotkey registry: %w", err)
	}

	s.log.Info("Restored coldkey snapshot",
		slog.String("coldkey_name", name),
		slog.String("snapshot_id", id.String()),
		slog.Int("hotkeys", len(snapshot.Hotkeys.Hotkeys)))

	return name, nil
}

// FetchManifest retrieves and parses a stored manifest record.
func (s *Service) FetchManifest(ctx context.Context, id interfaces.ContentID) (Manifest, error) {
	data, err := s.backend.Fetch(ctx, id, interfaces.MetadataType)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to fetch manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	return manifest, nil
}
