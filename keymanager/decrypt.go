package keymanager

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// DecodeHotkeySigningKey decrypts the stored encrypted_data of one hotkey and
// returns its signing key and address. It works directly from disk: the
// cipher suite is re-derived from the persisted salt and the supplied
// password, so the coldkey does not need to be loaded into any index. This is
// the path signing services use to obtain hotkey material.
func DecodeHotkeySigningKey(baseDir, coldkeyName, hotkeyName, password string) (*ecdsa.PrivateKey, string, error) {
	if err := interfaces.ValidateKeyName(coldkeyName); err != nil {
		return nil, "", err
	}
	coldkeyDir := filepath.Join(baseDir, coldkeyName)
	if _, err := os.Stat(coldkeyDir); os.IsNotExist(err) {
		return nil, "", fmt.Errorf("coldkey %q: %w", coldkeyName, interfaces.ErrColdkeyNotFound)
	}

	cipher, err := GetCipherSuite(password, coldkeyDir)
	if err != nil {
		return nil, "", err
	}

	hotkeys, err := readHotkeyRegistry(coldkeyDir)
	if err != nil {
		return nil, "", err
	}
	entry, ok := hotkeys[hotkeyName]
	if !ok {
		return nil, "", fmt.Errorf("hotkey %q under coldkey %q: %w", hotkeyName, coldkeyName, interfaces.ErrHotkeyNotFound)
	}

	raw, err := cipher.Decrypt([]byte(entry.EncryptedData))
	if err != nil {
		return nil, "", fmt.Errorf("hotkey %q: %w", hotkeyName, interfaces.ErrInvalidPassword)
	}

	payload, err := decodeHotkeyPayload(raw)
	if err != nil {
		return nil, "", err
	}

	priv, err := crypto.HexToECDSA(payload.PrivateKeyHex)
	if err != nil {
		return nil, "", fmt.Errorf("invalid private key material: %w", err)
	}
	return priv, crypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
}
