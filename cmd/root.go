package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mselser95/eve-trade-arb/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "eve-trade-arb",
	Short: "EVE Online hub-to-hub trade finder",
	Long: `Finds profitable hauling trades between EVE Online trade hubs: buy an item
at one hub's lowest ask, carry it along a known jump route and sell it into
another hub's highest bid.

Opportunities are computed on demand under a wallet, cargo and minimum-profit
budget, or for every item in a batch run whose results are stored for browsing.
Order books are pulled from ESI and cached in Redis.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load before reading configuration")
}

// loadEnvironment loads the env file, configuration and logger shared by
// every command.
func loadEnvironment(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	envErr := godotenv.Load(envFile)
	if envErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s not loaded\n", envFile)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}
