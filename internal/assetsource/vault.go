package assetsource

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// Vault is an in-memory Source backed by a token/account ledger. It serves
// memory-mode deployments, the simulator and tests.
type Vault struct {
	custody common.Address
	logger  *zap.Logger

	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int // token -> account -> balance
	targets  map[common.Address]common.Address              // tokenIn -> delivery address
	receipts map[string]*issuedReceipt
}

// issuedReceipt pins target balances at transfer time so VerifyTokensIn
// can prove the input leg arrived afterwards.
type issuedReceipt struct {
	tokenOut    common.Address
	amount      *big.Int
	targetMarks map[common.Address]*big.Int // tokenIn -> target balance at issuance
}

// NewVault creates an empty vault whose custody account holds the
// liquidatable balances.
func NewVault(custody common.Address, logger *zap.Logger) *Vault {
	return &Vault{
		custody:  custody,
		logger:   logger,
		balances: make(map[common.Address]map[common.Address]*big.Int),
		targets:  make(map[common.Address]common.Address),
		receipts: make(map[string]*issuedReceipt),
	}
}

// SetTarget configures where input tokens must be delivered.
func (v *Vault) SetTarget(tokenIn, target common.Address) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets[tokenIn] = target
}

// Mint credits an account. Test and simulation helper; a production vault
// is funded by external inflows.
func (v *Vault) Mint(token, account common.Address, amount *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.credit(token, account, amount)
}

// Custody returns the custody account address.
func (v *Vault) Custody() common.Address { return v.custody }

// BalanceOf returns an account's balance of a token.
func (v *Vault) BalanceOf(token, account common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.balance(token, account))
}

// TargetOf implements Source.
func (v *Vault) TargetOf(_ context.Context, tokenIn common.Address) (common.Address, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	target, ok := v.targets[tokenIn]
	if !ok {
		return common.Address{}, fmt.Errorf("no target configured for token %s", tokenIn.Hex())
	}

	return target, nil
}

// LiquidatableBalanceOf implements Source.
func (v *Vault) LiquidatableBalanceOf(_ context.Context, tokenOut common.Address) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.balance(tokenOut, v.custody)), nil
}

// TransferTokensOut implements Source. The receipt is single-use.
func (v *Vault) TransferTokensOut(_ context.Context, initiator, receiver, tokenOut common.Address, amount *big.Int) (types.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.move(tokenOut, v.custody, receiver, amount)
	if err != nil {
		return nil, fmt.Errorf("transfer out: %w", err)
	}

	marks := make(map[common.Address]*big.Int, len(v.targets))
	for tokenIn, target := range v.targets {
		marks[tokenIn] = new(big.Int).Set(v.balance(tokenIn, target))
	}

	id := uuid.NewString()
	v.receipts[id] = &issuedReceipt{
		tokenOut:    tokenOut,
		amount:      new(big.Int).Set(amount),
		targetMarks: marks,
	}

	v.logger.Debug("vault-transfer-out",
		zap.String("token", tokenOut.Hex()),
		zap.String("initiator", initiator.Hex()),
		zap.String("receiver", receiver.Hex()),
		zap.String("amount", amount.String()),
		zap.String("receipt", id))

	return types.Receipt(id), nil
}

// VerifyTokensIn implements Source. It consumes the receipt and fails
// unless the target received amountIn of tokenIn since issuance.
func (v *Vault) VerifyTokensIn(_ context.Context, tokenIn common.Address, amountIn *big.Int, receipt types.Receipt) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := string(receipt)
	issued, ok := v.receipts[id]
	if !ok {
		return fmt.Errorf("unknown receipt %q", id)
	}
	delete(v.receipts, id)

	target, ok := v.targets[tokenIn]
	if !ok {
		return fmt.Errorf("no target configured for token %s", tokenIn.Hex())
	}

	mark, ok := issued.targetMarks[tokenIn]
	if !ok {
		return fmt.Errorf("no balance mark for token %s on receipt %q", tokenIn.Hex(), id)
	}

	received := new(big.Int).Sub(v.balance(tokenIn, target), mark)
	if received.Cmp(amountIn) < 0 {
		return fmt.Errorf("expected %s of %s at target %s, received %s",
			amountIn, tokenIn.Hex(), target.Hex(), received)
	}

	v.logger.Debug("vault-verified-in",
		zap.String("token", tokenIn.Hex()),
		zap.String("target", target.Hex()),
		zap.String("amount", amountIn.String()),
		zap.String("out-token", issued.tokenOut.Hex()))

	return nil
}

// PullTokensIn implements Source.
func (v *Vault) PullTokensIn(_ context.Context, from, to, tokenIn common.Address, amount *big.Int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.move(tokenIn, from, to, amount)
	if err != nil {
		return fmt.Errorf("pull in: %w", err)
	}

	return nil
}

func (v *Vault) balance(token, account common.Address) *big.Int {
	accounts, ok := v.balances[token]
	if !ok {
		return new(big.Int)
	}
	b, ok := accounts[account]
	if !ok {
		return new(big.Int)
	}
	return b
}

func (v *Vault) credit(token, account common.Address, amount *big.Int) {
	accounts, ok := v.balances[token]
	if !ok {
		accounts = make(map[common.Address]*big.Int)
		v.balances[token] = accounts
	}
	b, ok := accounts[account]
	if !ok {
		b = new(big.Int)
		accounts[account] = b
	}
	b.Add(b, amount)
}

func (v *Vault) move(token, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("invalid amount")
	}

	b := v.balance(token, from)
	if b.Cmp(amount) < 0 {
		return fmt.Errorf("account %s holds %s of %s, needs %s", from.Hex(), b, token.Hex(), amount)
	}

	b.Sub(b, amount)
	v.credit(token, to, amount)

	return nil
}
