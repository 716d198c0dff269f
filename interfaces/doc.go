// Package interfaces defines the core interfaces and types for the wallet
// key store. It provides the contract between different components without
// implementation details.
//
// The package provides interfaces for the key components of the system:
//
//   - ColdkeyStore: lifecycle of password-protected coldkeys (create, load).
//   - HotkeyStore: generation and import of hotkeys under a loaded coldkey.
//   - WalletStore: the facade external callers are expected to use.
//   - StorageBackend: content-addressed blob storage used for wallet backups.
//   - ConfirmPrompt: interactive yes/no decisions, injectable for automation.
//
// # Error Model
//
// Sentinel errors distinguish the failure classes callers branch on:
// duplicate names (ErrColdkeyExists, ErrHotkeyExists), missing state
// (ErrColdkeyNotFound, ErrColdkeyNotLoaded, ErrHotkeyNotFound) and
// authentication failures (ErrInvalidPassword, ErrDecryptionFailed). A wrong
// password is only ever detected through authenticated-decryption failure, so
// the two authentication sentinels are kept distinct from the not-found
// sentinels by both value and message.
package interfaces
