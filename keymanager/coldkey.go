package keymanager

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// Coldkey is one loaded entry of the in-memory index: the decrypted wallet,
// the directory-scoped cipher suite and the hotkeys registered under it.
type Coldkey struct {
	// Wallet is the decrypted seed material, cached for the lifetime of the
	// loaded coldkey.
	Wallet *HDWallet

	// Hotkeys mirrors the on-disk registry; it is kept consistent with
	// hotkeys.json after every mutating call.
	Hotkeys map[string]interfaces.HotkeyEntry

	cipher *CipherSuite
	dir    string
}

// ColdKeyManager owns a base directory and the in-memory index of coldkeys
// that are loaded or newly created. The index is a projection of the on-disk
// state plus a successful decryption; entries are never evicted
// automatically.
type ColdKeyManager struct {
	baseDir  string
	log      *slog.Logger
	coldkeys map[string]*Coldkey
}

// NewColdKeyManager creates a manager over baseDir, creating the directory if
// it does not exist yet.
func NewColdKeyManager(baseDir string, log *slog.Logger) (*ColdKeyManager, error) {
	if err := os.MkdirAll(baseDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &ColdKeyManager{
		baseDir:  baseDir,
		log:      log,
		coldkeys: make(map[string]*Coldkey),
	}, nil
}

// BaseDir returns the directory all coldkeys live under.
func (m *ColdKeyManager) BaseDir() string {
	return m.baseDir
}

// Index returns the live in-memory index. HotKeyManager shares this map by
// reference so both managers always observe the same state.
func (m *ColdKeyManager) Index() map[string]*Coldkey {
	return m.coldkeys
}

// CreateColdkey generates a fresh 24-word mnemonic, encrypts it under
// password and registers the new coldkey. The name must be unused both in
// memory and on disk; a duplicate attempt fails before any disk mutation and
// leaves no state behind.
func (m *ColdKeyManager) CreateColdkey(name, password string) error {
	if err := interfaces.ValidateKeyName(name); err != nil {
		return err
	}
	if _, ok := m.coldkeys[name]; ok {
		return fmt.Errorf("coldkey %q: %w", name, interfaces.ErrColdkeyExists)
	}

	coldkeyDir := filepath.Join(m.baseDir, name)
	if _, err := os.Stat(coldkeyDir); err == nil {
		return fmt.Errorf("coldkey directory %q: %w", coldkeyDir, interfaces.ErrColdkeyExists)
	}

	// Creates the coldkey directory and its salt file.
	cipher, err := GetCipherSuite(password, coldkeyDir)
	if err != nil {
		return err
	}

	mnemonic, err := NewMnemonic()
	if err != nil {
		return err
	}
	m.log.Warn("Mnemonic for coldkey has been created, store it securely", "coldkey", name)

	token, err := cipher.Encrypt([]byte(mnemonic))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(coldkeyDir, MnemonicFileName), token, filePerm); err != nil {
		return fmt.Errorf("failed to write encrypted mnemonic: %w", err)
	}

	wallet, err := NewHDWallet(mnemonic)
	if err != nil {
		return err
	}

	hotkeys := make(map[string]interfaces.HotkeyEntry)
	if err := writeHotkeyRegistry(coldkeyDir, hotkeys); err != nil {
		return err
	}

	m.coldkeys[name] = &Coldkey{
		Wallet:  wallet,
		Hotkeys: hotkeys,
		cipher:  cipher,
		dir:     coldkeyDir,
	}
	m.log.Info("Coldkey created", "coldkey", name)
	return nil
}

// LoadColdkey decrypts an existing coldkey's mnemonic with password and
// populates the index entry for name, overwriting any stale in-memory entry.
// A missing directory or seed file yields ErrColdkeyNotFound; a failed
// decryption yields ErrInvalidPassword and leaves the index unchanged.
func (m *ColdKeyManager) LoadColdkey(name, password string) error {
	if err := interfaces.ValidateKeyName(name); err != nil {
		return err
	}
	coldkeyDir := filepath.Join(m.baseDir, name)
	mnemonicPath := filepath.Join(coldkeyDir, MnemonicFileName)

	if _, err := os.Stat(mnemonicPath); os.IsNotExist(err) {
		return fmt.Errorf("coldkey %q: %w", name, interfaces.ErrColdkeyNotFound)
	}

	// Reuses the salt persisted at creation time.
	cipher, err := GetCipherSuite(password, coldkeyDir)
	if err != nil {
		return err
	}

	token, err := os.ReadFile(mnemonicPath)
	if err != nil {
		return fmt.Errorf("failed to read encrypted mnemonic: %w", err)
	}

	mnemonic, err := cipher.Decrypt(token)
	if err != nil {
		return fmt.Errorf("coldkey %q: %w", name, interfaces.ErrInvalidPassword)
	}

	wallet, err := NewHDWallet(string(mnemonic))
	if err != nil {
		return err
	}

	hotkeys, err := readHotkeyRegistry(coldkeyDir)
	if err != nil {
		return err
	}

	m.coldkeys[name] = &Coldkey{
		Wallet:  wallet,
		Hotkeys: hotkeys,
		cipher:  cipher,
		dir:     coldkeyDir,
	}
	m.log.Info("Coldkey loaded", "coldkey", name)
	return nil
}

// Forget drops the in-memory entry for name so a later LoadColdkey re-reads
// state from disk. Files on disk are untouched.
func (m *ColdKeyManager) Forget(name string) {
	delete(m.coldkeys, name)
}

// ReadHotkeyRegistry reads the hotkey registry file of a coldkey directory.
// A missing hotkeys field is tolerated and treated as empty.
func ReadHotkeyRegistry(coldkeyDir string) (interfaces.HotkeyRegistry, error) {
	hotkeys, err := readHotkeyRegistry(coldkeyDir)
	if err != nil {
		return interfaces.HotkeyRegistry{}, err
	}
	return interfaces.HotkeyRegistry{Hotkeys: hotkeys}, nil
}

// WriteHotkeyRegistry replaces the hotkey registry file of a coldkey
// directory with the given registry.
func WriteHotkeyRegistry(coldkeyDir string, registry interfaces.HotkeyRegistry) error {
	hotkeys := registry.Hotkeys
	if hotkeys == nil {
		hotkeys = make(map[string]interfaces.HotkeyEntry)
	}
	return writeHotkeyRegistry(coldkeyDir, hotkeys)
}

// readHotkeyRegistry reads hotkeys.json from a coldkey directory. A missing
// hotkeys field is tolerated and treated as empty.
func readHotkeyRegistry(coldkeyDir string) (map[string]interfaces.HotkeyEntry, error) {
	raw, err := os.ReadFile(filepath.Join(coldkeyDir, HotkeysFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read hotkey registry: %w", err)
	}

	var registry interfaces.HotkeyRegistry
	if err := json.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse hotkey registry: %w", err)
	}
	if registry.Hotkeys == nil {
		registry.Hotkeys = make(map[string]interfaces.HotkeyEntry)
	}
	return registry.Hotkeys, nil
}

// writeHotkeyRegistry replaces hotkeys.json with a complete snapshot of the
// current hotkeys map. Full-content replace keeps the file authoritative.
func writeHotkeyRegistry(coldkeyDir string, hotkeys map[string]interfaces.HotkeyEntry) error {
	raw, err := json.MarshalIndent(interfaces.HotkeyRegistry{Hotkeys: hotkeys}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode hotkey registry: %w", err)
	}
	if err := os.WriteFile(filepath.Join(coldkeyDir, HotkeysFileName), raw, filePerm); err != nil {
		return fmt.Errorf("failed to write hotkey registry: %w", err)
	}
	return nil
}
