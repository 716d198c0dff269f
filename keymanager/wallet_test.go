package keymanager

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonson0910/Moderntensor/interfaces"
)

func TestWalletManagerEndToEnd(t *testing.T) {
	base := t.TempDir()
	wm, err := NewWalletManager(interfaces.Testnet, base, AlwaysConfirm(true), testLogger())
	require.NoError(t, err)

	// Create and verify on-disk state.
	require.NoError(t, wm.CreateColdkey("myck", "mypwd"))
	for _, f := range []string{SaltFileName, MnemonicFileName, HotkeysFileName} {
		_, err := os.Stat(filepath.Join(base, "myck", f))
		require.NoError(t, err, f)
	}

	// Reload from disk with the correct password.
	wm.Forget("myck")
	require.NoError(t, wm.LoadColdkey("myck", "mypwd"))

	// Generate a hotkey; the registry must contain it.
	encrypted, err := wm.GenerateHotkey("myck", "hk1")
	require.NoError(t, err)

	registry, err := readHotkeyRegistry(filepath.Join(base, "myck"))
	require.NoError(t, err)
	require.Contains(t, registry, "hk1")
	assert.Equal(t, encrypted, registry["hk1"].EncryptedData)

	// Re-import the just-generated payload over itself with an affirmative
	// answer; the registry still contains the hotkey afterwards.
	require.NoError(t, wm.ImportHotkey("myck", encrypted, "hk1", false))
	registry, err = readHotkeyRegistry(filepath.Join(base, "myck"))
	require.NoError(t, err)
	assert.Contains(t, registry, "hk1")
}

func TestLoadAllWallets(t *testing.T) {
	base := t.TempDir()
	wm, err := NewWalletManager(interfaces.Testnet, base, AlwaysConfirm(false), testLogger())
	require.NoError(t, err)

	require.NoError(t, wm.CreateColdkey("alpha", "pw-a"))
	require.NoError(t, wm.CreateColdkey("beta", "pw-b"))
	_, err = wm.GenerateHotkey("alpha", "hk1")
	require.NoError(t, err)
	_, err = wm.GenerateHotkey("alpha", "hk2")
	require.NoError(t, err)

	wallets, err := wm.LoadAllWallets()
	require.NoError(t, err)
	require.Len(t, wallets, 2)

	assert.Equal(t, "alpha", wallets[0].Name)
	require.Len(t, wallets[0].Hotkeys, 2)
	assert.Equal(t, "hk1", wallets[0].Hotkeys[0].Name)
	assert.NotEmpty(t, wallets[0].Hotkeys[0].Address)

	assert.Equal(t, "beta", wallets[1].Name)
	assert.Empty(t, wallets[1].Hotkeys)
}

func TestLoadAllWalletsMissingBaseDir(t *testing.T) {
	base := t.TempDir()
	wm, err := NewWalletManager(interfaces.Testnet, base, AlwaysConfirm(false), testLogger())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(base))
	wallets, err := wm.LoadAllWallets()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestDecodeHotkeySigningKey(t *testing.T) {
	base := t.TempDir()
	wm, err := NewWalletManager(interfaces.Testnet, base, AlwaysConfirm(false), testLogger())
	require.NoError(t, err)

	require.NoError(t, wm.CreateColdkey("myck", "mypwd"))
	_, err = wm.GenerateHotkey("myck", "hk1")
	require.NoError(t, err)

	registry, err := readHotkeyRegistry(filepath.Join(base, "myck"))
	require.NoError(t, err)

	// Decoding works straight from disk, without any loaded index.
	priv, addr, err := DecodeHotkeySigningKey(base, "myck", "hk1", "mypwd")
	require.NoError(t, err)
	require.NotNil(t, priv)
	assert.Equal(t, registry["hk1"].Address, addr)

	_, _, err = DecodeHotkeySigningKey(base, "myck", "hk1", "wrongpwd")
	assert.ErrorIs(t, err, interfaces.ErrInvalidPassword)

	_, _, err = DecodeHotkeySigningKey(base, "myck", "nope", "mypwd")
	assert.ErrorIs(t, err, interfaces.ErrHotkeyNotFound)

	_, _, err = DecodeHotkeySigningKey(base, "ghost", "hk1", "mypwd")
	assert.ErrorIs(t, err, interfaces.ErrColdkeyNotFound)

	// Traversal names must be rejected before any path is built.
	_, _, err = DecodeHotkeySigningKey(filepath.Join(base, "empty"), "../myck", "hk1", "mypwd")
	assert.ErrorIs(t, err, interfaces.ErrInvalidKeyName)
}
