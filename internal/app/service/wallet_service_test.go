package service

import (
	"encoding/hex"
	"testing"

	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/walletstore"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWalletFixture(t *testing.T) (*walletstore.MemoryStore, *WalletServiceImpl) {
	t.Helper()
	store := walletstore.NewMemoryStore()
	svc, err := NewWalletService(store, "unit-test-secret", nopLogger{})
	require.NoError(t, err)
	return store, svc.(*WalletServiceImpl)
}

func TestNewWalletServiceRefusesEmptySecret(t *testing.T) {
	_, err := NewWalletService(walletstore.NewMemoryStore(), "", nopLogger{})
	assert.Error(t, err)
}

func TestGenerateAndReveal(t *testing.T) {
	_, svc := newWalletFixture(t)

	handle, err := svc.Generate("owner1", "main")
	require.NoError(t, err)
	assert.NotEmpty(t, handle.WalletID)
	assert.NotEmpty(t, handle.Address)

	key, err := svc.Reveal(handle.WalletID)
	require.NoError(t, err)
	assert.Equal(t, handle.Address, crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func TestImportRoundTrip(t *testing.T) {
	_, svc := newWalletFixture(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	raw := "0x" + hex.EncodeToString(crypto.FromECDSA(key))

	handle, err := svc.Import("owner1", "imported", raw)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), handle.Address)

	revealed, err := svc.Reveal(handle.WalletID)
	require.NoError(t, err)
	assert.Zero(t, key.D.Cmp(revealed.D))
}

func TestImportInvalidKeyStoresNothing(t *testing.T) {
	store, svc := newWalletFixture(t)

	for _, raw := range []string{"", "zz", "0x1234", "not-hex-at-all"} {
		_, err := svc.Import("owner1", "bad", raw)
		assert.Equal(t, entity.ErrInvalidKey, entity.KindOf(err), "key %q", raw)
	}

	wallets, err := store.ListByOwner("owner1")
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestKeyEncryptedAtRest(t *testing.T) {
	store, svc := newWalletFixture(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	rawHex := hex.EncodeToString(crypto.FromECDSA(key))

	handle, err := svc.Import("owner1", "w", rawHex)
	require.NoError(t, err)

	stored, ok, err := store.Get(handle.WalletID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, stored.EncryptedPrivateKey, rawHex)
	assert.NotEqual(t, rawHex, stored.EncryptedPrivateKey)
}

func TestGetEnforcesOwnership(t *testing.T) {
	_, svc := newWalletFixture(t)
	handle, err := svc.Generate("owner1", "main")
	require.NoError(t, err)

	_, err = svc.Get("owner2", handle.WalletID)
	assert.Equal(t, entity.ErrWalletNotFound, entity.KindOf(err))

	w, err := svc.Get("owner1", handle.WalletID)
	require.NoError(t, err)
	assert.Equal(t, handle.Address, w.Address)
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	_, svc := newWalletFixture(t)
	handle, err := svc.Generate("owner1", "main")
	require.NoError(t, err)

	err = svc.Delete("owner2", handle.WalletID)
	assert.Equal(t, entity.ErrWalletNotFound, entity.KindOf(err))

	require.NoError(t, svc.Delete("owner1", handle.WalletID))
	_, err = svc.Reveal(handle.WalletID)
	assert.Equal(t, entity.ErrWalletNotFound, entity.KindOf(err))
}

func TestListReturnsHandlesOnly(t *testing.T) {
	_, svc := newWalletFixture(t)
	_, err := svc.Generate("owner1", "a")
	require.NoError(t, err)
	_, err = svc.Generate("owner1", "b")
	require.NoError(t, err)
	_, err = svc.Generate("owner2", "c")
	require.NoError(t, err)

	handles, err := svc.List("owner1")
	require.NoError(t, err)
	assert.Len(t, handles, 2)
}
