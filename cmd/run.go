package cmd

import (
	"fmt"

	"github.com/quantfeed/blockwatch/internal/app"
	"github.com/quantfeed/blockwatch/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the alert engine",
	Long: `Starts the block-trade alert engine, which will:
1. Connect to the alert feed over WebSocket
2. Parse block-trade messages into structured multi-leg trades
3. Evaluate each trade against the volume and premium thresholds
4. Persist messages, trades and decisions, and notify on fired alerts

The HTTP server exposes /metrics, /health, /ready and the evaluation API.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
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
