package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mselser95/eve-trade-arb/internal/app"
	"github.com/mselser95/eve-trade-arb/internal/refdata"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Compute and store opportunities for every item",
	Long: `Runs one batch computation: every item is evaluated over every hub route,
bounded only by order-book depth, and each item's list is written to the
configured store (STORAGE_MODE) as soon as it is done.

Use --refresh to download fresh order books from ESI first.`,
	RunE: runBatch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().Bool("refresh", false, "Load order books from ESI into Redis before the run")
}

func runBatch(cmd *cobra.Command, args []string) error {
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

	refresh, _ := cmd.Flags().GetBool("refresh")
	if refresh {
		result, refreshErr := refreshPrices(ctx, cfg, logger, snapshot, client)
		if refreshErr != nil {
			return refreshErr
		}
		printRefreshResult(cmd.OutOrStdout(), result)
	}

	source, err := app.NewQuoteSource(logger, client)
	if err != nil {
		return fmt.Errorf("create quote source: %w", err)
	}

	store, err := app.NewStore(cfg, logger, client)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	scheduler := app.NewBatchScheduler(&app.SchedulerConfig{
		Engine:  app.NewEngine(cfg, logger, snapshot, source),
		Storage: store,
		Logger:  logger,
	})

	result, err := scheduler.RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	total := 0
	for _, opps := range result.Opportunities {
		total += len(opps)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Batch %s finished in %s\n", result.RunID, result.Duration)
	fmt.Fprintf(out, "  items evaluated:          %d\n", result.ItemsEvaluated)
	fmt.Fprintf(out, "  items failed:             %d\n", result.ItemsFailed)
	fmt.Fprintf(out, "  store failures:           %d\n", result.StoreFailures)
	fmt.Fprintf(out, "  items with opportunities: %d\n", len(result.Opportunities))
	fmt.Fprintf(out, "  opportunities:            %d\n", total)

	return nil
}
