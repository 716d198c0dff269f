package keymanager

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// WalletManager ties a ColdKeyManager and a HotKeyManager together behind one
// network-scoped entry point. Both managers share the same in-memory index
// and base directory, so hotkey operations immediately see coldkeys created
// through the facade. External callers are expected to use this type
// exclusively rather than driving the two managers with divergent indices.
type WalletManager struct {
	network interfaces.Network
	baseDir string
	log     *slog.Logger

	ck *ColdKeyManager
	hk *HotKeyManager
}

var _ interfaces.WalletStore = (*WalletManager)(nil)

// NewWalletManager builds the facade over baseDir for the given network.
// confirm handles overwrite conflicts during hotkey imports.
func NewWalletManager(network interfaces.Network, baseDir string, confirm interfaces.ConfirmPrompt, log *slog.Logger) (*WalletManager, error) {
	ck, err := NewColdKeyManager(baseDir, log)
	if err != nil {
		return nil, err
	}
	hk := NewHotKeyManager(ck.Index(), baseDir, network, confirm, log)

	return &WalletManager{
		network: network,
		baseDir: baseDir,
		log:     log,
		ck:      ck,
		hk:      hk,
	}, nil
}

// Network returns the derivation network the facade was constructed for.
func (m *WalletManager) Network() interfaces.Network {
	return m.network
}

// BaseDir returns the directory holding the coldkey folders.
func (m *WalletManager) BaseDir() string {
	return m.baseDir
}

// CreateColdkey creates a new coldkey under the facade's base directory.
func (m *WalletManager) CreateColdkey(name, password string) error {
	return m.ck.CreateColdkey(name, password)
}

// LoadColdkey loads a previously created coldkey into the shared index.
func (m *WalletManager) LoadColdkey(name, password string) error {
	return m.ck.LoadColdkey(name, password)
}

// Forget drops a coldkey from the shared in-memory index.
func (m *WalletManager) Forget(name string) {
	m.ck.Forget(name)
}

// GenerateHotkey derives a new hotkey under an existing coldkey.
func (m *WalletManager) GenerateHotkey(coldkeyName, hotkeyName string) (string, error) {
	return m.hk.GenerateHotkey(coldkeyName, hotkeyName)
}

// ImportHotkey imports an encrypted hotkey payload under an existing coldkey.
func (m *WalletManager) ImportHotkey(coldkeyName, encryptedData, hotkeyName string, overwrite bool) error {
	return m.hk.ImportHotkey(coldkeyName, encryptedData, hotkeyName, overwrite)
}

// LoadAllWallets scans the base directory for coldkey folders and lists each
// with its hotkey names and plaintext addresses. Nothing is decrypted. A
// missing base directory logs a warning and returns an empty list.
func (m *WalletManager) LoadAllWallets() ([]interfaces.WalletInfo, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			m.log.Warn("Base directory does not exist", "baseDir", m.baseDir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan base directory: %w", err)
	}

	var wallets []interfaces.WalletInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		coldkeyDir := filepath.Join(m.baseDir, entry.Name())

		info := interfaces.WalletInfo{Name: entry.Name()}
		if _, err := os.Stat(filepath.Join(coldkeyDir, HotkeysFileName)); err == nil {
			hotkeys, err := readHotkeyRegistry(coldkeyDir)
			if err != nil {
				return nil, err
			}
			for name, hk := range hotkeys {
				info.Hotkeys = append(info.Hotkeys, interfaces.HotkeyInfo{Name: name, Address: hk.Address})
			}
			sort.Slice(info.Hotkeys, func(i, j int) bool { return info.Hotkeys[i].Name < info.Hotkeys[j].Name })
		}
		wallets = append(wallets, info)
	}

	sort.Slice(wallets, func(i, j int) bool { return wallets[i].Name < wallets[j].Name })
	return wallets, nil
}
