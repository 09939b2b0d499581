package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/app"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/internal/storage"
	"github.com/quantfeed/blockwatch/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Re-evaluate stored messages over a time window",
	Long: `Loads stored feed messages from PostgreSQL for the given window and
re-evaluates them against the current rules. Results are printed as JSON,
ranked with fired alerts first, largest absolute net premium on top.

Useful after a threshold change to see which historical trades would have
alerted under the new rules.`,
	RunE: replayWindow,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("from", "", "Window start, RFC3339 (default: 24h ago)")
	replayCmd.Flags().String("to", "", "Window end, RFC3339 (default: now)")
	replayCmd.Flags().Bool("fired-only", false, "Print only fired decisions")
}

func replayWindow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.StorageMode != "postgres" {
		return fmt.Errorf("replay requires STORAGE_MODE=postgres, got %q", cfg.StorageMode)
	}

	from, to, err := replayWindowBounds(cmd)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := storage.NewPostgresStorage(&storage.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	results, err := app.Replay(
		context.Background(),
		store,
		parser.New(logger),
		alert.New(logger),
		cfg.RuleSet(),
		nil,
		from, to,
	)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	firedOnly, _ := cmd.Flags().GetBool("fired-only")

	encoder := json.NewEncoder(os.Stdout)
	fired := 0
	for _, result := range results {
		if result.Decision.Fire {
			fired++
		} else if firedOnly {
			continue
		}
		err = encoder.Encode(result)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}

	logger.Info("replay-complete",
		zap.Int("messages", len(results)),
		zap.Int("fired", fired),
		zap.Time("from", from),
		zap.Time("to", to))
	return nil
}

func replayWindowBounds(cmd *cobra.Command) (from, to time.Time, err error) {
	now := time.Now().UTC()
	from = now.Add(-24 * time.Hour)
	to = now

	if raw, _ := cmd.Flags().GetString("from"); raw != "" {
		from, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("parse --from: %w", err)
		}
	}
	if raw, _ := cmd.Flags().GetString("to"); raw != "" {
		to, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return from, to, fmt.Errorf("parse --to: %w", err)
		}
	}
	if !from.Before(to) {
		return from, to, fmt.Errorf("--from must be before --to")
	}
	return from, to, nil
}
