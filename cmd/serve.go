package cmd

import (
	"fmt"

	"github.com/mselser95/eve-trade-arb/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trade API server",
	Long: `Starts the trade finder service, which will:
1. Load items, trade hubs and the jump graph from STATIC_DATA_DIR
2. Poll ESI for every hub region's order book and cache it in Redis
3. Run batch computations on an interval and after each price refresh
4. Serve on-demand trades and stored opportunities over HTTP

Use --no-batch to serve on-demand requests only.`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("no-batch", false, "Disable scheduled and manual batch runs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	noBatch, _ := cmd.Flags().GetBool("no-batch")

	application, err := app.New(cfg, logger, &app.Options{DisableScheduler: noBatch})
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
