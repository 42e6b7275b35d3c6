package types

import (
	"errors"
	"fmt"
	"math/big"
)

// Sentinel errors surfaced by the auction core and router.
var (
	// ErrInvalidReceiver rejects a swap addressed to the zero address.
	ErrInvalidReceiver = errors.New("invalid receiver")

	// ErrReentrantSwap rejects a swap issued while another swap on the
	// same pair is still settling (e.g. from inside its callback).
	ErrReentrantSwap = errors.New("reentrant swap")

	// ErrSwapExpired rejects a routed swap whose deadline has passed.
	ErrSwapExpired = errors.New("swap expired")

	// ErrUnknownPair rejects a routed swap naming a pair the registry
	// never created.
	ErrUnknownPair = errors.New("unknown pair")

	// ErrInvalidCallbackSender rejects a settlement callback that did not
	// originate from a registry-known pair or is not addressed to the
	// router that received it.
	ErrInvalidCallbackSender = errors.New("invalid callback sender")
)

// ConfigurationError reports an invalid pair construction parameter.
// No instance is created when it is returned.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid pair configuration: %s %s", e.Field, e.Reason)
}

// PriceExceedsLimitError is the caller's slippage protection: the current
// auction price is above the ceiling the caller was willing to pay.
type PriceExceedsLimitError struct {
	Limit *big.Int
	Price *big.Int
}

func (e *PriceExceedsLimitError) Error() string {
	return fmt.Sprintf("price %s exceeds limit %s", e.Price, e.Limit)
}

// InsufficientBalanceError reports a requested output above the smoothed
// available balance.
type InsufficientBalanceError struct {
	Requested *big.Int
	Available *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("requested %s exceeds available %s", e.Requested, e.Available)
}

// CollaboratorError wraps a failure signaled by the asset source or the
// receiver's settlement callback. The underlying error is propagated
// verbatim via Unwrap.
type CollaboratorError struct {
	Op  string // "balance", "transfer-out", "callback", "verify-in"
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator %s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
