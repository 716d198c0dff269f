package interfaces

import "errors"

var (
	// ErrColdkeyExists is returned when creating a coldkey whose name is
	// already present in memory or on disk. The failed create mutates nothing.
	ErrColdkeyExists = errors.New("coldkey already exists")

	// ErrColdkeyNotFound is returned when a coldkey directory or its encrypted
	// seed file is missing on disk.
	ErrColdkeyNotFound = errors.New("coldkey not found")

	// ErrColdkeyNotLoaded is returned when a hotkey operation references a
	// coldkey that has not been created or loaded into the in-memory index.
	ErrColdkeyNotLoaded = errors.New("coldkey not loaded")

	// ErrHotkeyExists is returned when generating a hotkey whose name is
	// already taken under the target coldkey.
	ErrHotkeyExists = errors.New("hotkey already exists")

	// ErrHotkeyNotFound is returned when a referenced hotkey is absent from a
	// coldkey's registry.
	ErrHotkeyNotFound = errors.New("hotkey not found")

	// ErrDecryptionFailed is returned when an authenticated-encryption token
	// fails verification: wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: invalid token or wrong key")

	// ErrInvalidPassword is returned when the seed of an existing coldkey
	// cannot be decrypted with the supplied password. It is distinct from
	// ErrColdkeyNotFound so callers can tell a typo from a missing key.
	ErrInvalidPassword = errors.New("invalid password: failed to decrypt coldkey seed")

	// ErrCorruptSalt is returned when a persisted salt file has the wrong
	// size. A coldkey with a damaged salt is unrecoverable.
	ErrCorruptSalt = errors.New("salt file is corrupt")
)

// ColdkeyStore manages the set of coldkeys under one base directory.
type ColdkeyStore interface {
	// CreateColdkey generates a fresh mnemonic, encrypts it under password
	// and registers the new coldkey in memory and on disk.
	CreateColdkey(name, password string) error

	// LoadColdkey decrypts an existing coldkey's seed with password and
	// populates the in-memory index entry for name.
	LoadColdkey(name, password string) error

	// Forget drops the in-memory entry for name, forcing a later LoadColdkey
	// to re-read state from disk. On-disk files are untouched.
	Forget(name string)
}

// HotkeyStore derives and imports hotkeys under loaded coldkeys. It operates
// on the same in-memory index as the ColdkeyStore it is paired with.
type HotkeyStore interface {
	// GenerateHotkey derives a new hotkey under coldkeyName and returns the
	// encrypted private-key payload that was persisted.
	GenerateHotkey(coldkeyName, hotkeyName string) (string, error)

	// ImportHotkey registers an externally supplied encrypted payload under
	// hotkeyName. When the name is taken and overwrite is false the operation
	// asks for confirmation; a declined overwrite is a logged no-op.
	ImportHotkey(coldkeyName, encryptedData, hotkeyName string, overwrite bool) error
}

// WalletStore is the network-scoped facade composing a ColdkeyStore and a
// HotkeyStore over one shared index. External callers (CLI, REST API) are
// expected to drive the subsystem exclusively through this interface.
type WalletStore interface {
	ColdkeyStore
	HotkeyStore

	// LoadAllWallets scans the base directory and lists every coldkey with
	// its hotkey names and addresses, without decrypting anything.
	LoadAllWallets() ([]WalletInfo, error)
}

// ConfirmPrompt obtains a yes/no answer for destructive operations.
// Implementations may block on interactive input; non-interactive callers
// substitute a predetermined decision.
type ConfirmPrompt interface {
	// Confirm presents prompt and reports whether the answer was affirmative
	// ("yes" or "y", case-insensitive). Any other answer is a decline.
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a plain function to the ConfirmPrompt interface.
type ConfirmFunc func(prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }
