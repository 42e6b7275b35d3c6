package cmd

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/internal/assetsource"
	"github.com/mselser95/auctionflow/internal/auction"
	"github.com/mselser95/auctionflow/internal/registry"
	"github.com/mselser95/auctionflow/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted auction timeline against an in-memory vault",
	Long: `Deploys a pair against an in-memory vault and advances a simulated
clock in fixed steps. At each step a taker buys whenever the quoted
price drops to the buy threshold, so you can watch the target-period
feedback loop reprice the auction.`,
	RunE: runSimulate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Int("steps", 48, "Number of clock steps to simulate")
	simulateCmd.Flags().Duration("step", 15*time.Minute, "Simulated time per step")
	simulateCmd.Flags().Duration("target-period", time.Hour, "Target period between captures")
	simulateCmd.Flags().String("initial-price", "10000000000000000", "Initial auction price")
	simulateCmd.Flags().String("buy-below", "10000000000000000", "Taker buys when the price is at or below this")
	simulateCmd.Flags().String("amount-out", "1000000000000000000", "Output amount per capture")
	simulateCmd.Flags().String("smoothing", "0", "WAD-scale smoothing factor")
}

// simClock is a manually advanced clock for the simulated pair and router.
type simClock struct {
	current time.Time
}

func (c *simClock) Now() time.Time { return c.current }

func (c *simClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func runSimulate(cmd *cobra.Command, args []string) error {
	steps, _ := cmd.Flags().GetInt("steps")
	step, _ := cmd.Flags().GetDuration("step")
	targetPeriod, _ := cmd.Flags().GetDuration("target-period")
	initialPriceStr, _ := cmd.Flags().GetString("initial-price")
	buyBelowStr, _ := cmd.Flags().GetString("buy-below")
	amountOutStr, _ := cmd.Flags().GetString("amount-out")
	smoothingStr, _ := cmd.Flags().GetString("smoothing")

	initialPrice, ok := new(big.Int).SetString(initialPriceStr, 10)
	if !ok || initialPrice.Sign() <= 0 {
		return fmt.Errorf("invalid --initial-price %q", initialPriceStr)
	}
	buyBelow, ok := new(big.Int).SetString(buyBelowStr, 10)
	if !ok || buyBelow.Sign() <= 0 {
		return fmt.Errorf("invalid --buy-below %q", buyBelowStr)
	}
	amountOut, ok := new(big.Int).SetString(amountOutStr, 10)
	if !ok || amountOut.Sign() <= 0 {
		return fmt.Errorf("invalid --amount-out %q", amountOutStr)
	}
	smoothing, ok := new(big.Int).SetString(smoothingStr, 10)
	if !ok || smoothing.Sign() < 0 {
		return fmt.Errorf("invalid --smoothing %q", smoothingStr)
	}

	var (
		tokenIn    = common.HexToAddress("0x0000000000000000000000000000000000000A01")
		tokenOut   = common.HexToAddress("0x0000000000000000000000000000000000000A02")
		buyer      = common.HexToAddress("0x0000000000000000000000000000000000000B01")
		custody    = common.HexToAddress("0x0000000000000000000000000000000000000C01")
		target     = common.HexToAddress("0x0000000000000000000000000000000000000C02")
		routerAddr = common.HexToAddress("0x0000000000000000000000000000000000000D01")
	)

	logger := zap.NewNop()
	clock := &simClock{current: time.Unix(1_700_000_000, 0)}

	vault := assetsource.NewVault(custody, logger)
	vault.SetTarget(tokenIn, target)

	// Enough custody for every step to capture, and a buyer who can always
	// afford the threshold price.
	vault.Mint(tokenOut, custody, new(big.Int).Mul(amountOut, big.NewInt(int64(steps)+1)))
	vault.Mint(tokenIn, buyer, new(big.Int).Mul(buyBelow, big.NewInt(int64(steps)+1)))

	reg := registry.New(logger)
	pair, err := reg.Create(auction.Config{
		Source:          vault,
		TokenIn:         tokenIn,
		TokenOut:        tokenOut,
		TargetPeriod:    targetPeriod,
		InitialPrice:    initialPrice,
		SmoothingFactor: smoothing,
		Logger:          logger,
		Now:             clock.Now,
	})
	if err != nil {
		return fmt.Errorf("create pair: %w", err)
	}

	rtr := router.New(router.Config{
		Address:  routerAddr,
		Registry: reg,
		Logger:   logger,
		Now:      clock.Now,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tELAPSED\tPRICE\tACTION")

	captures := 0
	start := clock.Now()
	ctx := context.Background()

	for i := 1; i <= steps; i++ {
		clock.Advance(step)
		price := pair.QueryPrice(clock.Now())

		action := "wait"
		if price.Cmp(buyBelow) <= 0 {
			_, err := rtr.Swap(ctx, buyer, router.SwapParams{
				PairID:      pair.ID(),
				Receiver:    buyer,
				AmountOut:   amountOut,
				AmountInMax: buyBelow,
				Deadline:    clock.Now().Add(time.Minute),
			})
			if err != nil {
				action = fmt.Sprintf("buy failed: %v", err)
			} else {
				action = "buy"
				captures++
			}
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			i, clock.Now().Sub(start), price.String(), action)
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	fmt.Printf("\nCaptures: %d over %s (target one per %s)\n",
		captures, time.Duration(steps)*step, targetPeriod)
	fmt.Printf("Paid to target: %s\n", vault.BalanceOf(tokenIn, target).String())

	return nil
}
