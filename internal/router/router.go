// Package router is the user-facing swap entry point. It enforces
// deadlines and registry membership before forwarding to a pair, and
// settles swaps by pulling input tokens from the original caller.
package router

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// Router validates and forwards swaps, and implements the flash-swap
// settlement callback.
type Router struct {
	addr     common.Address
	registry *registry.Registry
	logger   *zap.Logger
	now      func() time.Time
}

// Config holds router configuration.
type Config struct {
	Address  common.Address
	Registry *registry.Registry
	Logger   *zap.Logger
	Now      func() time.Time // optional clock override
}

// New creates a router.
func New(cfg Config) *Router {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Router{
		addr:     cfg.Address,
		registry: cfg.Registry,
		logger:   cfg.Logger,
		now:      now,
	}
}

// SwapParams describes a routed swap.
type SwapParams struct {
	PairID      string
	Receiver    common.Address
	AmountOut   *big.Int
	AmountInMax *big.Int
	Deadline    time.Time
	Payload     []byte // forwarded to the pair inside the router's payload
}

// Swap checks the deadline and registry membership, then forwards to the
// pair with the router itself as the settlement receiver. Input tokens are
// pulled from the caller during the callback window.
func (r *Router) Swap(ctx context.Context, caller common.Address, params SwapParams) (*types.SwapResult, error) {
	now := r.now()
	if now.After(params.Deadline) {
		SwapsRejectedTotal.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("%w: deadline %d, now %d",
			types.ErrSwapExpired, params.Deadline.Unix(), now.Unix())
	}

	pair, ok := r.registry.Get(params.PairID)
	if !ok {
		SwapsRejectedTotal.WithLabelValues("unknown_pair").Inc()
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownPair, params.PairID)
	}

	payload, err := encodePayload(&callbackPayload{
		Router: r.addr,
		Caller: caller,
		Inner:  params.Payload,
	})
	if err != nil {
		return nil, err
	}

	result, err := pair.ExecuteSwap(ctx, &types.SwapRequest{
		Sender:      caller,
		Receiver:    params.Receiver,
		AmountOut:   params.AmountOut,
		AmountInMax: params.AmountInMax,
		Payload:     payload,
		Callback:    r,
	})
	if err != nil {
		return nil, fmt.Errorf("routed swap: %w", err)
	}

	SwapsRoutedTotal.Inc()
	r.logger.Info("swap-routed",
		zap.String("pair-id", params.PairID),
		zap.String("caller", caller.Hex()),
		zap.String("receiver", params.Receiver.Hex()),
		zap.String("amount-in", result.AmountIn.String()))

	return result, nil
}

// FlashSwapCallback settles a routed swap: it validates that the calling
// pair is registry-known and that the payload was built by this router,
// then pulls amountIn of the pair's input token from the original caller
// to the pair's target address.
func (r *Router) FlashSwapCallback(ctx context.Context, pairID string, _ common.Address, amountIn, _ *big.Int, payload []byte) error {
	pair, ok := r.registry.Get(pairID)
	if !ok {
		CallbacksRejectedTotal.Inc()
		return fmt.Errorf("%w: pair %s not in registry", types.ErrInvalidCallbackSender, pairID)
	}

	decoded, err := decodePayload(payload)
	if err != nil {
		CallbacksRejectedTotal.Inc()
		return fmt.Errorf("%w: %v", types.ErrInvalidCallbackSender, err)
	}
	if decoded.Router != r.addr {
		CallbacksRejectedTotal.Inc()
		return fmt.Errorf("%w: payload addressed to %s", types.ErrInvalidCallbackSender, decoded.Router.Hex())
	}

	source := pair.Source()
	target, err := source.TargetOf(ctx, pair.TokenIn())
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	err = source.PullTokensIn(ctx, decoded.Caller, target, pair.TokenIn(), amountIn)
	if err != nil {
		return fmt.Errorf("pull input tokens: %w", err)
	}

	r.logger.Debug("swap-settled",
		zap.String("pair-id", pairID),
		zap.String("caller", decoded.Caller.Hex()),
		zap.String("target", target.Hex()),
		zap.String("amount-in", amountIn.String()))

	return nil
}
