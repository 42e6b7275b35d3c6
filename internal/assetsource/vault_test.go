package assetsource

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	tokenIn  = common.HexToAddress("0x0000000000000000000000000000000000000A01")
	tokenOut = common.HexToAddress("0x0000000000000000000000000000000000000A02")
	custody  = common.HexToAddress("0x0000000000000000000000000000000000000C01")
	target   = common.HexToAddress("0x0000000000000000000000000000000000000C02")
	buyer    = common.HexToAddress("0x0000000000000000000000000000000000000B01")
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	v := NewVault(custody, zap.NewNop())
	v.SetTarget(tokenIn, target)
	v.Mint(tokenOut, custody, big.NewInt(1_000_000))
	v.Mint(tokenIn, buyer, big.NewInt(1_000_000))

	return v
}

func TestVaultTransferOutAndVerifyIn(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	balance, err := v.LiquidatableBalanceOf(ctx, tokenOut)
	require.NoError(t, err)
	assert.Zero(t, balance.Cmp(big.NewInt(1_000_000)))

	receipt, err := v.TransferTokensOut(ctx, buyer, buyer, tokenOut, big.NewInt(400_000))
	require.NoError(t, err)
	require.NotEmpty(t, receipt)

	assert.Equal(t, big.NewInt(400_000), v.BalanceOf(tokenOut, buyer))
	assert.Equal(t, big.NewInt(600_000), v.BalanceOf(tokenOut, custody))

	// Input leg not delivered yet.
	err = v.VerifyTokensIn(ctx, tokenIn, big.NewInt(100_000), receipt)
	require.Error(t, err)

	// Receipt is single-use; re-verification fails even after delivery.
	err = v.PullTokensIn(ctx, buyer, target, tokenIn, big.NewInt(100_000))
	require.NoError(t, err)
	err = v.VerifyTokensIn(ctx, tokenIn, big.NewInt(100_000), receipt)
	require.Error(t, err)
}

func TestVaultVerifyInAfterDelivery(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	receipt, err := v.TransferTokensOut(ctx, buyer, buyer, tokenOut, big.NewInt(400_000))
	require.NoError(t, err)

	err = v.PullTokensIn(ctx, buyer, target, tokenIn, big.NewInt(100_000))
	require.NoError(t, err)

	err = v.VerifyTokensIn(ctx, tokenIn, big.NewInt(100_000), receipt)
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000), v.BalanceOf(tokenIn, target))
}

func TestVaultTransferOutInsufficientCustody(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	_, err := v.TransferTokensOut(ctx, buyer, buyer, tokenOut, big.NewInt(2_000_000))
	require.Error(t, err)

	// Nothing moved.
	assert.Equal(t, big.NewInt(1_000_000), v.BalanceOf(tokenOut, custody))
	assert.Zero(t, v.BalanceOf(tokenOut, buyer).Sign())
}

func TestVaultPullInInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	v := newTestVault(t)

	err := v.PullTokensIn(ctx, buyer, target, tokenIn, big.NewInt(2_000_000))
	require.Error(t, err)
	assert.Zero(t, v.BalanceOf(tokenIn, target).Sign())
}

func TestVaultTargetOfUnconfigured(t *testing.T) {
	v := NewVault(custody, zap.NewNop())

	_, err := v.TargetOf(context.Background(), tokenIn)
	require.Error(t, err)
}

func TestVaultVerifyUnknownReceipt(t *testing.T) {
	v := newTestVault(t)

	err := v.VerifyTokensIn(context.Background(), tokenIn, big.NewInt(1), []byte("nope"))
	require.Error(t, err)
}
