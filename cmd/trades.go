package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/mselser95/eve-trade-arb/internal/app"
	"github.com/mselser95/eve-trade-arb/internal/arbitrage"
	"github.com/mselser95/eve-trade-arb/internal/orderbook"
	"github.com/mselser95/eve-trade-arb/internal/refdata"
	"github.com/mselser95/eve-trade-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Compute the best trades for a wallet and cargo hold",
	Long: `Computes the most profitable hub-to-hub trades that fit within the given
wallet and cargo capacity and clear the minimum profit.

Quotes are read from Redis by default. Use --live to download order books
straight from ESI instead (slower, but needs no running loader).`,
	RunE: runTrades,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tradesCmd)
	addConstraintFlags(tradesCmd)
	tradesCmd.Flags().Bool("live", false, "Fetch order books from ESI instead of Redis")
	tradesCmd.Flags().Bool("json", false, "Print results as JSON")
}

func runTrades(cmd *cobra.Command, args []string) error {
	constraints, err := constraintsFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, logger, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	snapshot, err := refdata.Load(cfg.StaticDataDir, logger)
	if err != nil {
		return fmt.Errorf("load reference data: %w", err)
	}

	live, _ := cmd.Flags().GetBool("live")

	var source arbitrage.QuoteSource
	if live {
		books, loadErr := loadLiveBooks(ctx, cfg, logger, snapshot)
		if loadErr != nil {
			return loadErr
		}
		source = books
	} else {
		client := app.NewRedisClient(cfg)
		defer client.Close()

		redisSource, srcErr := app.NewQuoteSource(logger, client)
		if srcErr != nil {
			return fmt.Errorf("create quote source: %w", srcErr)
		}
		source = redisSource
	}

	engine := app.NewEngine(cfg, logger, snapshot, source)

	computeCtx, cancel := context.WithTimeout(ctx, cfg.OnDemandTimeout)
	defer cancel()

	opps, err := engine.Compute(computeCtx, constraints)
	if err != nil {
		return fmt.Errorf("compute trades: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return writeOpportunitiesJSON(cmd.OutOrStdout(), opps)
	}

	printOpportunities(cmd.OutOrStdout(), opps)
	return nil
}

func addConstraintFlags(cmd *cobra.Command) {
	cmd.Flags().Float64P("wallet", "w", arbitrage.DefaultWallet, "ISK available to buy with")
	cmd.Flags().Float64P("cargo", "c", arbitrage.DefaultCargo, "Cargo capacity in m3")
	cmd.Flags().Float64P("min-profit", "m", arbitrage.DefaultMinProfit, "Minimum profit per trade in ISK")
	cmd.Flags().IntP("limit", "l", arbitrage.DefaultLimit, "Maximum number of trades to show")
}

// constraintsFromFlags validates the budget flags the same way the HTTP API
// validates query parameters.
func constraintsFromFlags(cmd *cobra.Command) (arbitrage.Constraints, error) {
	return arbitrage.ParseConstraints(func(name string) string {
		flag := cmd.Flags().Lookup(strings.ReplaceAll(name, "_", "-"))
		if flag == nil {
			return ""
		}
		return flag.Value.String()
	})
}

func loadLiveBooks(ctx context.Context, cfg *config.Config, logger *zap.Logger, snapshot *refdata.Snapshot) (*orderbook.Manager, error) {
	books := orderbook.New(&orderbook.Config{Logger: logger})

	loader, err := app.NewLoader(cfg, logger, snapshot, books, nil)
	if err != nil {
		return nil, fmt.Errorf("create price loader: %w", err)
	}

	result, err := loader.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("load order books: %w", err)
	}

	logger.Info("live-order-books-loaded",
		zap.Int("regions-loaded", result.RegionsLoaded),
		zap.Int("regions-failed", result.RegionsFailed),
		zap.Int("books", result.Books))

	return books, nil
}

func printOpportunities(out io.Writer, opps []*arbitrage.Opportunity) {
	if len(opps) == 0 {
		fmt.Fprintln(out, "No trades found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tFROM\tTO\tQTY\tBUY\tSELL\tCOST\tPROFIT\tJUMPS\tPROFIT/JUMP")
	for _, o := range opps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%.2f\n",
			o.ItemName, o.SourceHub, o.DestinationHub, o.Quantity,
			o.BuyPrice, o.SellPrice, o.TotalCost, o.Profit, o.Jumps, o.ProfitPerJump)
	}
	_ = w.Flush()
}

func writeOpportunitiesJSON(out io.Writer, opps []*arbitrage.Opportunity) error {
	if opps == nil {
		opps = []*arbitrage.Opportunity{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	err := enc.Encode(opps)
	if err != nil {
		return fmt.Errorf("encode opportunities: %w", err)
	}
	return nil
}
