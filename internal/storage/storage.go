// Package storage persists swap completion events.
package storage

import (
	"context"

	"github.com/mselser95/auctionflow/pkg/types"
)

// Storage is the interface for persisting swap events.
type Storage interface {
	// StoreSwap persists one committed swap.
	StoreSwap(ctx context.Context, event *types.SwapEvent) error

	// Close closes the storage connection.
	Close() error
}
