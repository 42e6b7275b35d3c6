// Package testutil provides shared test doubles.
package testutil

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/pkg/types"
)

// MockSource is a scriptable asset source.
type MockSource struct {
	Target         common.Address
	Balance        *big.Int
	TargetErr      error
	BalanceErr     error
	TransferErr    error
	VerifyErr      error
	PullErr        error
	IssuedReceipt  types.Receipt
	TransferredOut []*big.Int
	VerifiedIn     []*big.Int
	Pulled         []*big.Int
	OnTransferOut  func() // hook before returning
}

func (m *MockSource) TargetOf(_ context.Context, _ common.Address) (common.Address, error) {
	return m.Target, m.TargetErr
}

func (m *MockSource) LiquidatableBalanceOf(_ context.Context, _ common.Address) (*big.Int, error) {
	if m.BalanceErr != nil {
		return nil, m.BalanceErr
	}
	if m.Balance == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(m.Balance), nil
}

func (m *MockSource) TransferTokensOut(_ context.Context, _, _, _ common.Address, amount *big.Int) (types.Receipt, error) {
	if m.TransferErr != nil {
		return nil, m.TransferErr
	}
	m.TransferredOut = append(m.TransferredOut, new(big.Int).Set(amount))
	if m.OnTransferOut != nil {
		m.OnTransferOut()
	}
	if m.IssuedReceipt == nil {
		return types.Receipt("mock-receipt"), nil
	}
	return m.IssuedReceipt, nil
}

func (m *MockSource) VerifyTokensIn(_ context.Context, _ common.Address, amountIn *big.Int, _ types.Receipt) error {
	if m.VerifyErr != nil {
		return m.VerifyErr
	}
	m.VerifiedIn = append(m.VerifiedIn, new(big.Int).Set(amountIn))
	return nil
}

func (m *MockSource) PullTokensIn(_ context.Context, _, _, _ common.Address, amount *big.Int) error {
	if m.PullErr != nil {
		return m.PullErr
	}
	m.Pulled = append(m.Pulled, new(big.Int).Set(amount))
	return nil
}

// MockReceiver records settlement callbacks and optionally runs a hook
// inside the callback window (for reentrancy tests).
type MockReceiver struct {
	Err      error
	Calls    int
	LastIn   *big.Int
	LastOut  *big.Int
	OnInvoke func(ctx context.Context) error
}

func (m *MockReceiver) FlashSwapCallback(ctx context.Context, _ string, _ common.Address, amountIn, amountOut *big.Int, _ []byte) error {
	m.Calls++
	m.LastIn = new(big.Int).Set(amountIn)
	m.LastOut = new(big.Int).Set(amountOut)
	if m.OnInvoke != nil {
		err := m.OnInvoke(ctx)
		if err != nil {
			return err
		}
	}
	return m.Err
}

// CollectSink buffers swap events.
type CollectSink struct {
	mu     sync.Mutex
	events []*types.SwapEvent
}

func (c *CollectSink) SwapExecuted(event *types.SwapEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns a copy of the collected events.
func (c *CollectSink) Events() []*types.SwapEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*types.SwapEvent, len(c.events))
	copy(out, c.events)
	return out
}
