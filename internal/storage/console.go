package storage

import (
	"context"
	"fmt"

	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// ConsoleStorage implements Storage by pretty-printing to console.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreSwap pretty-prints a committed swap to console.
func (c *ConsoleStorage) StoreSwap(_ context.Context, event *types.SwapEvent) error {
	fmt.Println("\n" + "────────────────────────────────────────────────────────────")
	fmt.Printf("AUCTION CLEARED  %s\n", event.ExecutedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("────────────────────────────────────────────────────────────")
	fmt.Printf("Swap:      %s\n", event.ID[:8])
	fmt.Printf("Pair:      %s\n", event.PairID[:8])
	fmt.Printf("Sender:    %s\n", event.Sender.Hex())
	fmt.Printf("Receiver:  %s\n", event.Receiver.Hex())
	fmt.Printf("Sold:      %s of %s\n", event.AmountOut, event.TokenOut.Hex())
	fmt.Printf("Charged:   %s of %s (limit %s)\n", event.AmountIn, event.TokenIn.Hex(), event.AmountInMax)
	fmt.Println("────────────────────────────────────────────────────────────")

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
