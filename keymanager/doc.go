// Package keymanager implements the hierarchical, password-protected wallet
// key store: long-lived coldkeys wrapping an encrypted BIP-39 mnemonic, and
// hotkeys derived from them for day-to-day signing.
//
// # Layout
//
// Every coldkey owns one directory under the store's base directory:
//
//	<base>/<coldkey>/salt.bin     raw 16-byte key-derivation salt
//	<base>/<coldkey>/mnemonic.enc Fernet token wrapping the mnemonic
//	<base>/<coldkey>/hotkeys.json {"hotkeys": {name: {address, encrypted_data}}}
//
// The salt is generated once per directory and never changes afterwards;
// losing it makes the encrypted seed permanently unrecoverable even with the
// correct password.
//
// # Components
//
// ColdKeyManager owns the base directory and the in-memory index of loaded
// coldkeys. HotKeyManager operates on the same index by reference, so hotkey
// operations immediately see coldkeys created through the shared
// WalletManager facade. Passwords are never persisted: the symmetric key is
// re-derived per operation from password + salt (PBKDF2-SHA256), and a wrong
// password is detected solely through authenticated-decryption failure.
//
// Decrypted wallet material stays cached in the index for the lifetime of a
// loaded coldkey. This is an intentional exception to the
// tight-key-lifetime rule: it is what makes repeated hotkey derivation cheap.
// Call Forget to drop a coldkey from memory.
package keymanager
