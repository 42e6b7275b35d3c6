// Package assetsource defines the custody capability an auction pair
// consumes, plus the two shipped implementations: an in-memory vault and
// an EVM-backed source.
package assetsource

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/pkg/types"
)

// Source is the asset-custody collaborator. Implementations hold the
// sellable balance and the settlement proceeds; the auction core only ever
// moves value through this interface.
type Source interface {
	// TargetOf returns the address where input tokens must be delivered.
	TargetOf(ctx context.Context, tokenIn common.Address) (common.Address, error)

	// LiquidatableBalanceOf returns the raw sellable balance, before
	// smoothing.
	LiquidatableBalanceOf(ctx context.Context, tokenOut common.Address) (*big.Int, error)

	// TransferTokensOut moves output tokens to the receiver and returns
	// an opaque receipt for later cross-validation.
	TransferTokensOut(ctx context.Context, initiator, receiver, tokenOut common.Address, amount *big.Int) (types.Receipt, error)

	// VerifyTokensIn fails unless amountIn of tokenIn reached the
	// configured target address since the receipt was issued.
	VerifyTokensIn(ctx context.Context, tokenIn common.Address, amountIn *big.Int, receipt types.Receipt) error

	// PullTokensIn moves input tokens between accounts on behalf of the
	// router's settlement callback.
	PullTokensIn(ctx context.Context, from, to, tokenIn common.Address, amount *big.Int) error
}
