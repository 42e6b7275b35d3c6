package cmd

import (
	"fmt"
	"math/big"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mselser95/auctionflow/internal/pricing"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Compute auction prices offline",
	Long: `Computes the auction price curve for a pair without talking to a
daemon. Given the last committed price and the target period, prints the
price at a series of elapsed times, plus the smoothed balance if a raw
balance and smoothing factor are provided.`,
	RunE: runQuote,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.Flags().String("last-price", "10000000000000000", "Last committed auction price (base-10 integer)")
	quoteCmd.Flags().Duration("target-period", time.Hour, "Target period between captures")
	quoteCmd.Flags().Duration("elapsed", 0, "Single elapsed time to quote (0 prints a curve)")
	quoteCmd.Flags().String("balance", "", "Raw output balance to smooth (optional)")
	quoteCmd.Flags().String("smoothing", "0", "WAD-scale smoothing factor")
}

func runQuote(cmd *cobra.Command, args []string) error {
	lastPriceStr, _ := cmd.Flags().GetString("last-price")
	targetPeriod, _ := cmd.Flags().GetDuration("target-period")
	elapsed, _ := cmd.Flags().GetDuration("elapsed")
	balanceStr, _ := cmd.Flags().GetString("balance")
	smoothingStr, _ := cmd.Flags().GetString("smoothing")

	lastPrice, ok := new(big.Int).SetString(lastPriceStr, 10)
	if !ok || lastPrice.Sign() <= 0 {
		return fmt.Errorf("invalid --last-price %q", lastPriceStr)
	}
	if targetPeriod < time.Second {
		return fmt.Errorf("--target-period must be at least 1s, got %s", targetPeriod)
	}

	lastAuctionAt := time.Unix(0, 0)

	if elapsed > 0 {
		price := pricing.ComputePrice(lastAuctionAt, lastPrice, targetPeriod, lastAuctionAt.Add(elapsed))
		fmt.Printf("Price after %s: %s\n", elapsed, price.String())
	} else {
		// Curve from an eighth of the target period out to 4x
		multiples := []int64{1, 2, 4, 8, 16, 32}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ELAPSED\tPRICE")
		for i := len(multiples) - 1; i >= 0; i-- {
			dt := targetPeriod / time.Duration(multiples[i])
			price := pricing.ComputePrice(lastAuctionAt, lastPrice, targetPeriod, lastAuctionAt.Add(dt))
			fmt.Fprintf(w, "%s\t%s\n", dt, price.String())
		}
		for _, m := range []int64{2, 4} {
			dt := targetPeriod * time.Duration(m)
			price := pricing.ComputePrice(lastAuctionAt, lastPrice, targetPeriod, lastAuctionAt.Add(dt))
			fmt.Fprintf(w, "%s\t%s\n", dt, price.String())
		}
		err := w.Flush()
		if err != nil {
			return err
		}
	}

	if balanceStr != "" {
		balance, ok := new(big.Int).SetString(balanceStr, 10)
		if !ok || balance.Sign() < 0 {
			return fmt.Errorf("invalid --balance %q", balanceStr)
		}

		smoothing, ok := new(big.Int).SetString(smoothingStr, 10)
		if !ok || smoothing.Sign() < 0 || smoothing.Cmp(pricing.WAD) >= 0 {
			return fmt.Errorf("invalid --smoothing %q, need an integer in [0, 1e18)", smoothingStr)
		}

		available := pricing.AvailableAmount(balance, smoothing)
		fmt.Printf("\nAvailable for auction: %s of %s\n", available.String(), balance.String())
	}

	return nil
}
