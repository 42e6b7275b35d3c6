// Package auction implements the auction pair: a target-period Dutch
// auction that sells whatever the asset source has accrued, repricing so
// that on average one auction clears per target period.
package auction

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/mselser95/auctionflow/internal/assetsource"
	"github.com/mselser95/auctionflow/internal/pricing"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// EventSink receives the completion signal for every committed swap.
type EventSink interface {
	SwapExecuted(event *types.SwapEvent)
}

// Config holds pair construction parameters. Everything here is immutable
// after New.
type Config struct {
	Source          assetsource.Source
	TokenIn         common.Address
	TokenOut        common.Address
	TargetPeriod    time.Duration
	InitialPrice    *big.Int
	SmoothingFactor *big.Int // WAD-scale fraction, must be < 1e18
	Logger          *zap.Logger
	Events          EventSink        // optional
	Now             func() time.Time // optional clock override
}

// Pair is one deployed auction pair. The only mutable state is the
// (lastAuctionAt, lastAuctionPrice) tuple, committed together by a
// successful swap and never otherwise.
type Pair struct {
	id           string
	source       assetsource.Source
	tokenIn      common.Address
	tokenOut     common.Address
	targetPeriod time.Duration
	smoothing    *big.Int
	logger       *zap.Logger
	events       EventSink
	now          func() time.Time

	// Trips when a settlement callback re-enters the same pair. The
	// stale-price exploit is already closed by committing state before
	// the callback runs; this guard exists because Go gives no
	// transactional per-call atomicity.
	executing atomic.Bool

	mu               sync.RWMutex
	lastAuctionAt    time.Time
	lastAuctionPrice *big.Int
}

// New validates the configuration and creates a pair. The auction clock
// starts at construction time with the caller-supplied initial price.
func New(cfg Config) (*Pair, error) {
	if cfg.Source == nil {
		return nil, &types.ConfigurationError{Field: "source", Reason: "cannot be nil"}
	}
	if cfg.TargetPeriod < time.Second {
		return nil, &types.ConfigurationError{Field: "targetPeriod", Reason: "must be at least one second"}
	}
	if cfg.InitialPrice == nil || cfg.InitialPrice.Sign() <= 0 {
		return nil, &types.ConfigurationError{Field: "initialPrice", Reason: "must be positive"}
	}
	if cfg.SmoothingFactor == nil || cfg.SmoothingFactor.Sign() < 0 {
		return nil, &types.ConfigurationError{Field: "smoothingFactor", Reason: "must be non-negative"}
	}
	if cfg.SmoothingFactor.Cmp(pricing.WAD) >= 0 {
		return nil, &types.ConfigurationError{Field: "smoothingFactor", Reason: "must be below the WAD scale unit"}
	}
	if cfg.Logger == nil {
		return nil, &types.ConfigurationError{Field: "logger", Reason: "cannot be nil"}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	initial := new(big.Int).Set(cfg.InitialPrice)
	if initial.Cmp(pricing.MaxPrice) > 0 {
		initial.Set(pricing.MaxPrice)
	}

	p := &Pair{
		id:               uuid.NewString(),
		source:           cfg.Source,
		tokenIn:          cfg.TokenIn,
		tokenOut:         cfg.TokenOut,
		targetPeriod:     cfg.TargetPeriod,
		smoothing:        new(big.Int).Set(cfg.SmoothingFactor),
		logger:           cfg.Logger,
		events:           cfg.Events,
		now:              now,
		lastAuctionAt:    now(),
		lastAuctionPrice: initial,
	}

	p.logger.Info("auction-pair-created",
		zap.String("pair-id", p.id),
		zap.String("token-in", p.tokenIn.Hex()),
		zap.String("token-out", p.tokenOut.Hex()),
		zap.Duration("target-period", p.targetPeriod),
		zap.String("initial-price", initial.String()),
		zap.String("smoothing-factor", p.smoothing.String()))

	return p, nil
}

// ID returns the pair's registry identity.
func (p *Pair) ID() string { return p.id }

// TokenIn returns the input token identifier.
func (p *Pair) TokenIn() common.Address { return p.tokenIn }

// TokenOut returns the output token identifier.
func (p *Pair) TokenOut() common.Address { return p.tokenOut }

// TargetPeriod returns the desired average time between auctions.
func (p *Pair) TargetPeriod() time.Duration { return p.targetPeriod }

// SmoothingFactor returns the WAD-scale withheld fraction.
func (p *Pair) SmoothingFactor() *big.Int {
	return new(big.Int).Set(p.smoothing)
}

// Source returns the asset-source collaborator.
func (p *Pair) Source() assetsource.Source { return p.source }

// LastAuctionAt returns the time of the most recent committed swap.
func (p *Pair) LastAuctionAt() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastAuctionAt
}

// LastAuctionPrice returns the most recently committed price.
func (p *Pair) LastAuctionPrice() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.lastAuctionPrice)
}

// Target returns where input tokens must be delivered.
func (p *Pair) Target(ctx context.Context) (common.Address, error) {
	return p.source.TargetOf(ctx, p.tokenIn)
}

// QueryPrice returns the auction price at the given instant.
func (p *Pair) QueryPrice(now time.Time) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return pricing.ComputePrice(p.lastAuctionAt, p.lastAuctionPrice, p.targetPeriod, now)
}

// ComputeExactAmountIn returns the price a swap committed right now would
// be charged.
func (p *Pair) ComputeExactAmountIn() *big.Int {
	return p.QueryPrice(p.now())
}

// ComputeTimeForPrice estimates when the auction will reach the given
// price.
func (p *Pair) ComputeTimeForPrice(price *big.Int) time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return pricing.ComputeTimeForPrice(p.lastAuctionAt, p.lastAuctionPrice, p.targetPeriod, price)
}

// QueryMaxAmountOut returns the smoothed balance currently up for auction.
func (p *Pair) QueryMaxAmountOut(ctx context.Context) (*big.Int, error) {
	raw, err := p.source.LiquidatableBalanceOf(ctx, p.tokenOut)
	if err != nil {
		return nil, &types.CollaboratorError{Op: "balance", Err: err}
	}

	return pricing.AvailableAmount(raw, p.smoothing), nil
}

// ExecuteSwap runs one auction capture end to end: price the elapsed time,
// commit the new (time, price) tuple, move tokens out, optionally invoke
// the receiver's flash settlement callback, then verify the input leg
// arrived. Any failure after the commit rolls it back, so a failed call
// never advances the auction clock.
func (p *Pair) ExecuteSwap(ctx context.Context, req *types.SwapRequest) (result *types.SwapResult, err error) {
	if req.Receiver == (common.Address{}) {
		SwapsRejectedTotal.WithLabelValues("invalid_receiver").Inc()
		return nil, types.ErrInvalidReceiver
	}

	if !p.executing.CompareAndSwap(false, true) {
		SwapsRejectedTotal.WithLabelValues("reentrant").Inc()
		return nil, types.ErrReentrantSwap
	}
	defer p.executing.Store(false)

	start := time.Now()
	now := p.now()

	p.mu.Lock()
	prevAt := p.lastAuctionAt
	prevPrice := p.lastAuctionPrice

	price := pricing.ComputePrice(prevAt, prevPrice, p.targetPeriod, now)
	if req.AmountInMax == nil || price.Cmp(req.AmountInMax) > 0 {
		p.mu.Unlock()
		SwapsRejectedTotal.WithLabelValues("price_exceeds_limit").Inc()
		return nil, &types.PriceExceedsLimitError{Limit: req.AmountInMax, Price: price}
	}

	// Commit before any external call: a re-entering caller must never
	// observe the pre-swap price.
	p.lastAuctionAt = now
	p.lastAuctionPrice = price
	p.mu.Unlock()

	defer func() {
		if err == nil {
			return
		}
		p.mu.Lock()
		p.lastAuctionAt = prevAt
		p.lastAuctionPrice = prevPrice
		p.mu.Unlock()
	}()

	raw, err := p.source.LiquidatableBalanceOf(ctx, p.tokenOut)
	if err != nil {
		SwapsRejectedTotal.WithLabelValues("collaborator").Inc()
		return nil, &types.CollaboratorError{Op: "balance", Err: err}
	}

	available := pricing.AvailableAmount(raw, p.smoothing)
	if req.AmountOut == nil || req.AmountOut.Sign() < 0 || req.AmountOut.Cmp(available) > 0 {
		SwapsRejectedTotal.WithLabelValues("insufficient_balance").Inc()
		return nil, &types.InsufficientBalanceError{Requested: req.AmountOut, Available: available}
	}

	receipt, err := p.source.TransferTokensOut(ctx, req.Sender, req.Receiver, p.tokenOut, req.AmountOut)
	if err != nil {
		SwapsRejectedTotal.WithLabelValues("collaborator").Inc()
		return nil, &types.CollaboratorError{Op: "transfer-out", Err: err}
	}

	if len(req.Payload) > 0 && req.Callback != nil {
		err = req.Callback.FlashSwapCallback(ctx, p.id, req.Sender, price, req.AmountOut, req.Payload)
		if err != nil {
			SwapsRejectedTotal.WithLabelValues("callback").Inc()
			return nil, &types.CollaboratorError{Op: "callback", Err: err}
		}
	}

	err = p.source.VerifyTokensIn(ctx, p.tokenIn, price, receipt)
	if err != nil {
		SwapsRejectedTotal.WithLabelValues("verify_in").Inc()
		return nil, &types.CollaboratorError{Op: "verify-in", Err: err}
	}

	event := &types.SwapEvent{
		ID:          uuid.NewString(),
		PairID:      p.id,
		Sender:      req.Sender,
		Receiver:    req.Receiver,
		TokenIn:     p.tokenIn,
		TokenOut:    p.tokenOut,
		AmountOut:   new(big.Int).Set(req.AmountOut),
		AmountInMax: new(big.Int).Set(req.AmountInMax),
		AmountIn:    new(big.Int).Set(price),
		Payload:     req.Payload,
		ExecutedAt:  now,
	}
	if p.events != nil {
		p.events.SwapExecuted(event)
	}

	SwapsExecutedTotal.Inc()
	SwapDurationSeconds.Observe(time.Since(start).Seconds())
	LastAuctionPriceGauge.WithLabelValues(p.id).Set(approxFloat(price))

	p.logger.Info("swap-executed",
		zap.String("pair-id", p.id),
		zap.String("swap-id", event.ID),
		zap.String("sender", req.Sender.Hex()),
		zap.String("receiver", req.Receiver.Hex()),
		zap.String("amount-out", req.AmountOut.String()),
		zap.String("amount-in", price.String()))

	return &types.SwapResult{
		AmountIn: new(big.Int).Set(price),
		Receipt:  receipt,
	}, nil
}

// approxFloat narrows a price for the gauge; precision loss is fine for
// monitoring.
func approxFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
