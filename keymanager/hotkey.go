package keymanager

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// hotkeyPayload is the plaintext structure wrapped by a hotkey's
// encrypted_data token. It carries everything needed to re-import the hotkey
// elsewhere; the address is recomputed from the private key on import rather
// than trusted.
type hotkeyPayload struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	PrivateKeyHex   string `json:"private_key_hex"`
	DerivationIndex uint32 `json:"derivation_index"`
}

func decodeHotkeyPayload(raw []byte) (*hotkeyPayload, error) {
	var payload hotkeyPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid hotkey payload: %w", err)
	}
	return &payload, nil
}

// HotKeyManager generates and imports hotkeys under loaded coldkeys. It does
// not own the coldkey index: it operates on the same map as the
// ColdKeyManager it is paired with, so mutations are visible across both
// without a second source of truth.
type HotKeyManager struct {
	coldkeys map[string]*Coldkey
	baseDir  string
	network  interfaces.Network
	confirm  interfaces.ConfirmPrompt
	log      *slog.Logger
}

// NewHotKeyManager creates a manager over a shared coldkey index. confirm
// decides overwrite conflicts during imports; pass a predetermined decision
// for non-interactive deployments.
func NewHotKeyManager(coldkeys map[string]*Coldkey, baseDir string, network interfaces.Network, confirm interfaces.ConfirmPrompt, log *slog.Logger) *HotKeyManager {
	return &HotKeyManager{
		coldkeys: coldkeys,
		baseDir:  baseDir,
		network:  network,
		confirm:  confirm,
		log:      log,
	}
}

// GenerateHotkey derives a new hotkey under coldkeyName, encrypts its
// private-key payload with the coldkey's cipher suite, records it in memory
// and on disk, and returns the encrypted payload so a caller can later
// re-import it elsewhere. The derivation index is the current hotkey count.
func (m *HotKeyManager) GenerateHotkey(coldkeyName, hotkeyName string) (string, error) {
	if err := interfaces.ValidateKeyName(hotkeyName); err != nil {
		return "", err
	}

	coldkey, ok := m.coldkeys[coldkeyName]
	if !ok {
		return "", fmt.Errorf("coldkey %q: %w", coldkeyName, interfaces.ErrColdkeyNotLoaded)
	}
	if _, exists := coldkey.Hotkeys[hotkeyName]; exists {
		return "", fmt.Errorf("hotkey %q under coldkey %q: %w", hotkeyName, coldkeyName, interfaces.ErrHotkeyExists)
	}

	index := uint32(len(coldkey.Hotkeys))
	derived, err := coldkey.Wallet.DeriveHotkey(m.network, index)
	if err != nil {
		return "", err
	}

	payload := hotkeyPayload{
		Name:            hotkeyName,
		Address:         derived.Address,
		PrivateKeyHex:   derived.PrivateKeyHex(),
		DerivationIndex: index,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode hotkey payload: %w", err)
	}

	token, err := coldkey.cipher.Encrypt(raw)
	if err != nil {
		return "", err
	}

	encrypted := string(token)
	coldkey.Hotkeys[hotkeyName] = interfaces.HotkeyEntry{
		Address:       derived.Address,
		EncryptedData: encrypted,
	}
	if err := writeHotkeyRegistry(coldkey.dir, coldkey.Hotkeys); err != nil {
		return "", err
	}

	m.log.Info("Hotkey created", "coldkey", coldkeyName, "hotkey", hotkeyName, "address", derived.Address)
	return encrypted, nil
}

// ImportHotkey registers an externally supplied encrypted hotkey payload
// under hotkeyName. The payload must have been produced under the same
// coldkey's cipher suite; anything else fails with ErrDecryptionFailed. When
// hotkeyName is already taken and overwrite is false, the configured
// ConfirmPrompt decides: a declined overwrite aborts the import without
// mutation and without error.
func (m *HotKeyManager) ImportHotkey(coldkeyName, encryptedData, hotkeyName string, overwrite bool) error {
	if err := interfaces.ValidateKeyName(hotkeyName); err != nil {
		return err
	}

	coldkey, ok := m.coldkeys[coldkeyName]
	if !ok {
		return fmt.Errorf("coldkey %q: %w", coldkeyName, interfaces.ErrColdkeyNotLoaded)
	}

	raw, err := coldkey.cipher.Decrypt([]byte(encryptedData))
	if err != nil {
		return fmt.Errorf("cannot import hotkey %q: %w", hotkeyName, err)
	}

	payload, err := decodeHotkeyPayload(raw)
	if err != nil {
		return err
	}

	// The embedded address is advisory only; recompute it from the key.
	address, err := AddressFromPrivateKeyHex(payload.PrivateKeyHex)
	if err != nil {
		return err
	}

	if _, exists := coldkey.Hotkeys[hotkeyName]; exists {
		if !overwrite {
			confirmed, err := m.confirm.Confirm(fmt.Sprintf("Hotkey '%s' already exists. Overwrite? (yes/no): ", hotkeyName))
			if err != nil {
				return fmt.Errorf("overwrite confirmation failed: %w", err)
			}
			if !confirmed {
				m.log.Warn("Overwrite canceled, hotkey import aborted", "coldkey", coldkeyName, "hotkey", hotkeyName)
				return nil
			}
		}
		m.log.Warn("Overwriting existing hotkey", "coldkey", coldkeyName, "hotkey", hotkeyName)
	}

	coldkey.Hotkeys[hotkeyName] = interfaces.HotkeyEntry{
		Address:       address,
		EncryptedData: encryptedData,
	}
	if err := writeHotkeyRegistry(coldkey.dir, coldkey.Hotkeys); err != nil {
		return err
	}

	m.log.Info("Hotkey imported", "coldkey", coldkeyName, "hotkey", hotkeyName, "address", address)
	return nil
}
