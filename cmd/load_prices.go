package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mselser95/eve-trade-arb/internal/app"
	"github.com/mselser95/eve-trade-arb/internal/esi"
	"github.com/mselser95/eve-trade-arb/internal/orderbook"
	"github.com/mselser95/eve-trade-arb/internal/quotes"
	"github.com/mselser95/eve-trade-arb/internal/refdata"
	"github.com/mselser95/eve-trade-arb/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var loadPricesCmd = &cobra.Command{
	Use:   "load-prices",
	Short: "Load order books from ESI into Redis once",
	Long: `Downloads every trade hub region's market orders from ESI, reduces them to
the best asks and bids per item and writes them to Redis under
orders:{region}:{item} with QUOTE_TTL.`,
	RunE: runLoadPrices,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(loadPricesCmd)
}

func runLoadPrices(cmd *cobra.Command, args []string) error {
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

	client := app.NewRedisClient(cfg)
	defer client.Close()

	result, err := refreshPrices(ctx, cfg, logger, snapshot, client)
	if err != nil {
		return err
	}

	printRefreshResult(cmd.OutOrStdout(), result)
	return nil
}

func refreshPrices(
	ctx context.Context,
	cfg *config.Config,
	logger *zap.Logger,
	snapshot *refdata.Snapshot,
	client *redis.Client,
) (*esi.RefreshResult, error) {
	writer, err := quotes.NewWriter(quotes.WriterConfig{
		Client: client,
		TTL:    cfg.QuoteTTL,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote writer: %w", err)
	}

	books := orderbook.New(&orderbook.Config{Logger: logger})

	loader, err := app.NewLoader(cfg, logger, snapshot, books, writer)
	if err != nil {
		return nil, fmt.Errorf("create price loader: %w", err)
	}

	result, err := loader.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh prices: %w", err)
	}

	return result, nil
}

func printRefreshResult(out io.Writer, result *esi.RefreshResult) {
	fmt.Fprintf(out, "Loaded %d region(s), %d failed, in %s\n",
		result.RegionsLoaded, result.RegionsFailed, result.Duration)
	fmt.Fprintf(out, "  orders: %d\n", result.Orders)
	fmt.Fprintf(out, "  books:  %d\n", result.Books)
}
