package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/mselser95/auctionflow/internal/app"
	"github.com/mselser95/auctionflow/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the auction daemon",
	Long: `Starts the auction daemon, which will:
1. Connect to the configured asset source (in-memory vault or EVM contract)
2. Deploy one auction pair from the PAIR_* environment variables
3. Serve quotes and swaps over the JSON API
4. Stream executed auctions over /ws/swaps

Configuration is read from the environment; a .env file is honored.`,
	RunE: runDaemon,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load .env if present
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
