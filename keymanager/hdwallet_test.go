package keymanager

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonson0910/Moderntensor/interfaces"
)

func TestNewMnemonic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(mnemonic), 24)

	_, err = NewHDWallet(mnemonic)
	require.NoError(t, err)
}

func TestNewHDWalletInvalidMnemonic(t *testing.T) {
	_, err := NewHDWallet("definitely not a valid mnemonic phrase")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

func TestDeriveHotkeyDeterministic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)

	w1, err := NewHDWallet(mnemonic)
	require.NoError(t, err)
	w2, err := NewHDWallet(mnemonic)
	require.NoError(t, err)

	d1, err := w1.DeriveHotkey(interfaces.Testnet, 0)
	require.NoError(t, err)
	d2, err := w2.DeriveHotkey(interfaces.Testnet, 0)
	require.NoError(t, err)

	assert.Equal(t, d1.Address, d2.Address)
	assert.Equal(t, d1.PrivateKeyHex(), d2.PrivateKeyHex())
	assert.True(t, strings.HasPrefix(d1.Address, "0x"))
}

func TestDeriveHotkeyDistinct(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)
	w, err := NewHDWallet(mnemonic)
	require.NoError(t, err)

	d0, err := w.DeriveHotkey(interfaces.Testnet, 0)
	require.NoError(t, err)
	d1, err := w.DeriveHotkey(interfaces.Testnet, 1)
	require.NoError(t, err)
	dMain, err := w.DeriveHotkey(interfaces.Mainnet, 0)
	require.NoError(t, err)

	assert.NotEqual(t, d0.Address, d1.Address)
	assert.NotEqual(t, d0.Address, dMain.Address)
}

func TestAddressFromPrivateKeyHex(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)
	w, err := NewHDWallet(mnemonic)
	require.NoError(t, err)

	derived, err := w.DeriveHotkey(interfaces.Testnet, 3)
	require.NoError(t, err)

	addr, err := AddressFromPrivateKeyHex(derived.PrivateKeyHex())
	require.NoError(t, err)
	assert.Equal(t, derived.Address, addr)

	_, err = AddressFromPrivateKeyHex("zz")
	assert.Error(t, err)
}
