package keymanager

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"

	"github.com/sonson0910/Moderntensor/interfaces"
)

// ErrInvalidMnemonic is returned when seed material fails BIP-39 validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// mnemonicEntropyBits yields 24-word mnemonics.
const mnemonicEntropyBits = 256

// HDWallet wraps the BIP-32 master key of a coldkey. All hotkeys are derived
// from it; the wallet itself stays in memory only while its coldkey is
// loaded.
type HDWallet struct {
	master *hdkeychain.ExtendedKey
}

// DerivedHotkey is the outcome of deriving one hotkey from a parent wallet.
type DerivedHotkey struct {
	// Address is the public identifier, 0x-prefixed hex.
	Address string

	// PrivateKey is the secp256k1 signing key.
	PrivateKey *ecdsa.PrivateKey

	// Index is the derivation index used for the final path element.
	Index uint32
}

// NewMnemonic generates a fresh 24-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NewHDWallet builds a wallet from a BIP-39 mnemonic. The seed is computed
// with an empty passphrase; protection comes from the at-rest encryption of
// the mnemonic, not from a BIP-39 passphrase.
func NewHDWallet(mnemonic string) (*HDWallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	seed := bip39.NewSeed(mnemonic, "")
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to derive master key: %w", err)
	}
	return &HDWallet{master: master}, nil
}

// coinType returns the BIP-44 coin type for a network.
func coinType(network interfaces.Network) uint32 {
	if network == interfaces.Mainnet {
		return 60
	}
	return 1
}

// DeriveHotkey derives the hotkey at m/44'/coinType'/0'/0/index and returns
// its signing key with the matching address. Derivation is deterministic:
// the same wallet, network and index always produce the same hotkey.
func (w *HDWallet) DeriveHotkey(network interfaces.Network, index uint32) (*DerivedHotkey, error) {
	path := []uint32{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + coinType(network),
		hdkeychain.HardenedKeyStart + 0,
		0,
		index,
	}

	key := w.master
	var err error
	for _, step := range path {
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("failed to derive path element %d: %w", step, err)
		}
	}

	btcPriv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to extract private key: %w", err)
	}
	priv := btcPriv.ToECDSA()

	return &DerivedHotkey{
		Address:    crypto.PubkeyToAddress(priv.PublicKey).Hex(),
		PrivateKey: priv,
		Index:      index,
	}, nil
}

// PrivateKeyHex encodes the signing key as raw hex for payload embedding.
func (d *DerivedHotkey) PrivateKeyHex() string {
	return hex.EncodeToString(crypto.FromECDSA(d.PrivateKey))
}

// AddressFromPrivateKeyHex recomputes the address belonging to a raw hex
// private key. Used on import so the store never trusts a caller-supplied
// address.
func AddressFromPrivateKeyHex(privHex string) (string, error) {
	priv, err := crypto.HexToECDSA(privHex)
	if err != nil {
		return "", fmt.Errorf("invalid private key material: %w", err)
	}
	return crypto.PubkeyToAddress(priv.PublicKey).Hex(), nil
}
