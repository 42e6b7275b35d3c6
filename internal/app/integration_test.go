package app

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/internal/assetsource"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/mselser95/auctionflow/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		LogLevel: "info",
		HTTPPort: "0",

		SourceMode:   "memory",
		VaultCustody: "0x0000000000000000000000000000000000000C01",

		PairTokenIn:         "0x0000000000000000000000000000000000000A01",
		PairTokenOut:        "0x0000000000000000000000000000000000000A02",
		PairTargetAddress:   "0x0000000000000000000000000000000000000C02",
		PairTargetPeriod:    time.Hour,
		PairInitialPrice:    "10000000000000000", // 1e16
		PairSmoothingFactor: "0",

		RouterAddress: "0x0000000000000000000000000000000000000D01",

		QuoteCacheTTL:    500 * time.Millisecond,
		FeedPingInterval: 10 * time.Second,
		FeedWriteTimeout: 5 * time.Second,
		FeedSendBuffer:   64,

		StorageMode: "console",
	}
}

func TestNewWiresOnePairFromConfig(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Shutdown()

	require.Equal(t, 1, a.Registry().Len())

	pair := a.Registry().List()[0]
	assert.Equal(t, common.HexToAddress(cfg.PairTokenIn), pair.TokenIn())
	assert.Equal(t, common.HexToAddress(cfg.PairTokenOut), pair.TokenOut())
	assert.Equal(t, time.Hour, pair.TargetPeriod())
	assert.Equal(t, cfg.InitialPrice(), pair.LastAuctionPrice())
}

func TestSetupSourceEVMCarriesChainID(t *testing.T) {
	// Throwaway key, never funded.
	t.Setenv("CHAIN_PRIVATE_KEY", "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318")

	cfg := testConfig()
	cfg.SourceMode = "evm"
	cfg.ChainRPCURL = "http://localhost:8545"
	cfg.ChainID = 137
	cfg.VaultContract = "0x0000000000000000000000000000000000000E01"
	require.NoError(t, cfg.Validate())

	source, err := setupSource(cfg, zap.NewNop())
	require.NoError(t, err)

	evmSource, ok := source.(*assetsource.EVMSource)
	require.True(t, ok)
	assert.Equal(t, int64(137), evmSource.ChainID().Int64())
}

func TestNewRejectsBadPairConfig(t *testing.T) {
	cfg := testConfig()
	cfg.PairTargetPeriod = 0

	_, err := New(cfg, zap.NewNop())
	require.Error(t, err)
}

// End-to-end through the wired components: seed the memory vault, route a
// swap, confirm settlement and the auction commit.
func TestRoutedSwapAgainstMemoryVault(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	a, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Shutdown()

	pair := a.Registry().List()[0]
	vault, ok := pair.Source().(*assetsource.Vault)
	require.True(t, ok)

	buyer := common.HexToAddress("0x0000000000000000000000000000000000000B01")
	target := common.HexToAddress(cfg.PairTargetAddress)
	amountOut := big.NewInt(1_000)

	// With a one hour target period the price one second after deployment
	// is 3600x the initial price. Fund and bound for that worst case.
	limit := new(big.Int).Mul(cfg.InitialPrice(), big.NewInt(3_600))

	vault.Mint(pair.TokenOut(), vault.Custody(), big.NewInt(1_000_000))
	vault.Mint(pair.TokenIn(), buyer, limit)

	// The auction clock has one second granularity; a swap in the same
	// second as deployment quotes the unreachable sentinel price.
	time.Sleep(1100 * time.Millisecond)

	result, err := a.Router().Swap(context.Background(), buyer, router.SwapParams{
		PairID:      pair.ID(),
		Receiver:    buyer,
		AmountOut:   amountOut,
		AmountInMax: limit,
		Deadline:    time.Now().Add(time.Minute),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// Buyer took delivery, the target got paid the committed price.
	assert.Zero(t, vault.BalanceOf(pair.TokenOut(), buyer).Cmp(amountOut))
	assert.Zero(t, vault.BalanceOf(pair.TokenIn(), target).Cmp(result.AmountIn))
	assert.Zero(t, pair.LastAuctionPrice().Cmp(result.AmountIn))
}
