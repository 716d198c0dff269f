package keymanager

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fernet/fernet-go"
	"golang.org/x/crypto/pbkdf2"

	"github.com/sonson0910/Moderntensor/interfaces"
)

const (
	// SaltFileName is the fixed name of the per-coldkey salt file.
	SaltFileName = "salt.bin"

	// MnemonicFileName holds the Fernet token wrapping the coldkey mnemonic.
	MnemonicFileName = "mnemonic.enc"

	// HotkeysFileName holds the hotkey registry for a coldkey.
	HotkeysFileName = "hotkeys.json"

	// SaltSize is the raw salt length in bytes.
	SaltSize = 16

	// kdfIterations matches the stored-key format: changing it would make
	// every existing mnemonic.enc undecryptable.
	kdfIterations = 100_000

	keySize = 32

	dirPerm  = 0o700
	filePerm = 0o600
)

// GetOrCreateSalt returns the salt for dir, generating and persisting a fresh
// 16-byte salt on first use. The directory is created if needed.
func GetOrCreateSalt(dir string) ([]byte, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create coldkey directory: %w", err)
	}

	saltPath := filepath.Join(dir, SaltFileName)
	salt, err := os.ReadFile(saltPath)
	if err == nil {
		if len(salt) != SaltSize {
			return nil, fmt.Errorf("%w: %s has %d bytes, want %d", interfaces.ErrCorruptSalt, saltPath, len(salt), SaltSize)
		}
		return salt, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read salt file: %w", err)
	}

	salt = make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := os.WriteFile(saltPath, salt, filePerm); err != nil {
		return nil, fmt.Errorf("failed to write salt file: %w", err)
	}
	return salt, nil
}

// GenerateEncryptionKey derives the symmetric key for (password, salt) via
// PBKDF2-HMAC-SHA256 and returns it base64url-encoded, the representation the
// Fernet primitive requires. The derivation is deterministic; the key is
// never persisted.
func GenerateEncryptionKey(password string, salt []byte) string {
	raw := pbkdf2.Key([]byte(password), salt, kdfIterations, keySize, sha256.New)
	return base64.URLEncoding.EncodeToString(raw)
}

// CipherSuite performs authenticated symmetric encryption bound to one
// derived key. Decrypt fails for tokens produced under a different key or
// tampered with; that failure is the sole wrong-password signal.
type CipherSuite struct {
	key *fernet.Key
}

// NewCipherSuite builds a CipherSuite from a base64url-encoded 32-byte key as
// produced by GenerateEncryptionKey.
func NewCipherSuite(encodedKey string) (*CipherSuite, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode encryption key: %w", err)
	}
	return &CipherSuite{key: key}, nil
}

// GetCipherSuite obtains or creates the salt for dir, derives the key from
// password and returns a ready CipherSuite. This is the only entry point
// other components use; they never touch salts or raw keys directly.
func GetCipherSuite(password, dir string) (*CipherSuite, error) {
	salt, err := GetOrCreateSalt(dir)
	if err != nil {
		return nil, err
	}
	return NewCipherSuite(GenerateEncryptionKey(password, salt))
}

// Encrypt wraps plaintext into an authenticated Fernet token.
func (c *CipherSuite) Encrypt(plaintext []byte) ([]byte, error) {
	tok, err := fernet.EncryptAndSign(plaintext, c.key)
	if err != nil {
		return nil, fmt.Errorf("encryption failed: %w", err)
	}
	return tok, nil
}

// Decrypt verifies and opens a token produced by Encrypt. It returns
// interfaces.ErrDecryptionFailed when the token was made under a different
// key or has been modified.
func (c *CipherSuite) Decrypt(token []byte) ([]byte, error) {
	msg := fernet.VerifyAndDecrypt(token, 0, []*fernet.Key{c.key})
	if msg == nil {
		return nil, interfaces.ErrDecryptionFailed
	}
	return msg, nil
}
