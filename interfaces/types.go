package interfaces

import (
	"errors"
	"fmt"
	"regexp"
)

// Network selects how addresses and signing keys are derived from seed
// material. It only affects the derivation step; storage is network-agnostic.
type Network int

const (
	// Testnet derives keys under the test coin type.
	Testnet Network = iota
	// Mainnet derives keys under the production coin type.
	Mainnet
)

// String returns the network name.
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return "unknown"
	}
}

// ParseNetwork converts a network name into a Network value.
func ParseNetwork(name string) (Network, error) {
	switch name {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return Testnet, fmt.Errorf("unknown network: %s", name)
	}
}

// keyNameRe restricts coldkey and hotkey names to path-safe identifiers,
// since coldkey names double as directory names.
var keyNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ErrInvalidKeyName is returned for names unusable as coldkey or hotkey names.
var ErrInvalidKeyName = errors.New("invalid key name")

// ValidateKeyName reports whether name is usable as a coldkey or hotkey name.
func ValidateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidKeyName)
	}
	if !keyNameRe.MatchString(name) {
		return fmt.Errorf("%w: %q must match %s", ErrInvalidKeyName, name, keyNameRe.String())
	}
	return nil
}

// HotkeyEntry is the persisted public view of a hotkey: its plaintext address
// and the authenticated-encryption token wrapping its private key payload.
// EncryptedData is opaque to storage; only the owning coldkey's cipher suite
// can open it.
type HotkeyEntry struct {
	Address       string `json:"address"`
	EncryptedData string `json:"encrypted_data"`
}

// HotkeyRegistry is the on-disk shape of a coldkey's hotkeys.json file. The
// file is always rewritten in full so it stays a complete snapshot.
type HotkeyRegistry struct {
	Hotkeys map[string]HotkeyEntry `json:"hotkeys"`
}

// HotkeyInfo pairs a hotkey name with its plaintext address for listings.
type HotkeyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// WalletInfo describes one coldkey directory and its hotkeys, without any
// decrypted material.
type WalletInfo struct {
	Name    string       `json:"name"`
	Hotkeys []HotkeyInfo `json:"hotkeys"`
}
