package service

import (
	"context"
	"math/big"
	"testing"

	"token_trader/internal/app/port"
	"token_trader/internal/domain/entity"
	"token_trader/internal/infrastructure/walletstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	fake    *fakeIntegration
	svc     port.TransferService
	walletH entity.WalletHandle
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	netDef := testNetDef()
	fake := newFakeIntegration(netDef)

	walletSvc, err := NewWalletService(walletstore.NewMemoryStore(), "test-secret", nopLogger{})
	require.NoError(t, err)
	handle, err := walletSvc.Generate("owner1", "main")
	require.NoError(t, err)

	svc := NewTransferService(&fakeNetProvider{netDef: netDef}, &fakeProvider{integration: fake}, walletSvc, nopLogger{}, testSwapConfig())
	return &transferFixture{fake: fake, svc: svc, walletH: handle}
}

func (fx *transferFixture) request(asset, amount string) entity.TransferRequest {
	return entity.TransferRequest{
		OwnerID:  "owner1",
		WalletID: fx.walletH.WalletID,
		Asset:    asset,
		To:       "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		Amount:   amount,
		Network:  "bsc",
	}
}

func TestSendNativeHappyPath(t *testing.T) {
	fx := newTransferFixture(t)
	fx.fake.nativeBalance = units(3, 18)

	receipt, err := fx.svc.SendAsset(context.Background(), fx.request("BNB", "1.5"))
	require.NoError(t, err)
	assert.Equal(t, entity.SwapStatusSuccess, receipt.Status)
	assert.Equal(t, "1.5", receipt.AmountStr)
	assert.Contains(t, fx.fake.calls, "SendNative")
	assert.NotContains(t, fx.fake.calls, "SendToken")
}

func TestSendTokenHappyPath(t *testing.T) {
	fx := newTransferFixture(t)
	fx.fake.setTokenBalance("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", units(100, 18))

	receipt, err := fx.svc.SendAsset(context.Background(), fx.request("BUSD", "25"))
	require.NoError(t, err)
	assert.Equal(t, entity.SwapStatusSuccess, receipt.Status)
	assert.Contains(t, fx.fake.calls, "SendToken")
	assert.NotContains(t, fx.fake.calls, "SendNative")
}

func TestSendRejectsMalformedRecipient(t *testing.T) {
	fx := newTransferFixture(t)
	req := fx.request("BNB", "1")
	req.To = "somewhere"
	_, err := fx.svc.SendAsset(context.Background(), req)
	assert.Equal(t, entity.ErrInvalidAddress, entity.KindOf(err))
	assert.Zero(t, fx.fake.callCount())
}

func TestSendInsufficientBalance(t *testing.T) {
	fx := newTransferFixture(t)
	fx.fake.nativeBalance = units(1, 18)
	_, err := fx.svc.SendAsset(context.Background(), fx.request("BNB", "2"))
	assert.Equal(t, entity.ErrInsufficientFunds, entity.KindOf(err))
}

func TestSendTokenRevertSurfacesTransferFailed(t *testing.T) {
	fx := newTransferFixture(t)
	fx.fake.setTokenBalance("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56", units(100, 18))
	fx.fake.waitReceipt = port.MinedReceipt{Status: 0, GasUsed: 60000, EffectiveGasPrice: big.NewInt(3000000000)}

	receipt, err := fx.svc.SendAsset(context.Background(), fx.request("BUSD", "25"))
	assert.Equal(t, entity.ErrTransferFailed, entity.KindOf(err))
	assert.Equal(t, entity.SwapStatusFailed, receipt.Status)
	te, ok := entity.AsTradeError(err)
	require.True(t, ok)
	assert.NotEmpty(t, te.TxHash)
}
