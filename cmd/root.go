package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "auctionflow",
	Short: "Target-period Dutch auction engine",
	Long: `Auctionflow runs continuous Dutch auctions over token balances held
by an asset source. Each pair reprices against a target period: when
captures come faster than the target the price doubles, when they come
slower it decays toward zero, so the auction clears at whatever rate
the market will bear.

The daemon serves a JSON API for quotes and swaps, a WebSocket feed of
executed auctions, and Prometheus metrics.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
