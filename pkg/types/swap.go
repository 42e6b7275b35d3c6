package types

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Receipt is an opaque settlement receipt issued by an asset source when
// output tokens leave custody. It is handed back during input verification
// so the source can cross-validate the two legs of a swap.
type Receipt []byte

// FlashSwapReceiver settles a swap after receiving the output tokens.
// The callback runs between the output transfer and input verification, so
// the implementation may use the tokens it just received to source the
// amountIn it owes.
type FlashSwapReceiver interface {
	FlashSwapCallback(ctx context.Context, pairID string, initiator common.Address, amountIn, amountOut *big.Int, payload []byte) error
}

// SwapRequest describes a single auction capture attempt. It is a
// pass-through value; nothing here is persisted.
type SwapRequest struct {
	Sender      common.Address
	Receiver    common.Address
	AmountOut   *big.Int
	AmountInMax *big.Int

	// Payload is forwarded verbatim to the receiver's settlement callback.
	// An empty payload skips the callback entirely (no flash settlement).
	Payload  []byte
	Callback FlashSwapReceiver
}

// SwapResult is returned from a committed swap.
type SwapResult struct {
	AmountIn *big.Int
	Receipt  Receipt
}

// SwapEvent is the completion signal emitted for every committed swap.
type SwapEvent struct {
	ID          string         `json:"id"`
	PairID      string         `json:"pair_id"`
	Sender      common.Address `json:"sender"`
	Receiver    common.Address `json:"receiver"`
	TokenIn     common.Address `json:"token_in"`
	TokenOut    common.Address `json:"token_out"`
	AmountOut   *big.Int       `json:"amount_out"`
	AmountInMax *big.Int       `json:"amount_in_max"`
	AmountIn    *big.Int       `json:"amount_in"`
	Payload     []byte         `json:"payload,omitempty"`
	ExecutedAt  time.Time      `json:"executed_at"`
}
