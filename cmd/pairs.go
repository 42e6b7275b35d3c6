package cmd

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mselser95/auctionflow/pkg/httpserver"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the pairs served by a running daemon",
	Long: `Queries a running auction daemon over its JSON API and prints the
deployed pairs. With --quote each pair's live price and available
balance are fetched as well.`,
	RunE: runPairs,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(pairsCmd)
	pairsCmd.Flags().StringP("addr", "a", "http://localhost:8080", "Daemon base URL")
	pairsCmd.Flags().BoolP("quote", "q", false, "Fetch a live quote for each pair")
}

func runPairs(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	withQuotes, _ := cmd.Flags().GetBool("quote")

	client := &http.Client{Timeout: 10 * time.Second}

	var pairs []httpserver.PairResponse
	err := getJSON(client, addr+"/api/pairs", &pairs)
	if err != nil {
		return fmt.Errorf("fetch pairs: %w", err)
	}

	if len(pairs) == 0 {
		fmt.Println("No pairs deployed")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)

	if withQuotes {
		fmt.Fprintln(w, "PAIR\tTOKEN IN\tTOKEN OUT\tPERIOD\tPRICE\tAVAILABLE")
		for _, pair := range pairs {
			var quote httpserver.QuoteResponse
			err := getJSON(client, fmt.Sprintf("%s/api/pairs/%s/quote", addr, pair.ID), &quote)
			if err != nil {
				return fmt.Errorf("fetch quote for %s: %w", pair.ID, err)
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%ds\t%s\t%s\n",
				pair.ID, pair.TokenIn, pair.TokenOut, pair.TargetPeriodSecs,
				quote.Price, quote.MaxAmountOut)
		}
	} else {
		fmt.Fprintln(w, "PAIR\tTOKEN IN\tTOKEN OUT\tPERIOD\tLAST PRICE\tLAST AUCTION")
		for _, pair := range pairs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%ds\t%s\t%s\n",
				pair.ID, pair.TokenIn, pair.TokenOut, pair.TargetPeriodSecs,
				pair.LastAuctionPrice, pair.LastAuctionAt.Format(time.RFC3339))
		}
	}

	return w.Flush()
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
