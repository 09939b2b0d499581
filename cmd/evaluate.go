package cmd

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/quantfeed/blockwatch/internal/alert"
	"github.com/quantfeed/blockwatch/internal/parser"
	"github.com/quantfeed/blockwatch/pkg/config"
	"github.com/quantfeed/blockwatch/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Parse and evaluate a single message",
	Long: `Reads one block-trade message from a file (or stdin when no file is
given), runs it through the parser and the alert rules from the current
configuration, and prints the parsed trade and decision as JSON.

Useful for checking how a message would have been decided without touching
the live feed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: evaluateMessage,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().Int64("message-id", 0, "Message ID used for the deterministic decision ID")
}

func evaluateMessage(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var text []byte
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read message file: %w", err)
		}
	} else {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	}
	if len(text) == 0 {
		return fmt.Errorf("empty message")
	}

	messageID, _ := cmd.Flags().GetInt64("message-id")

	logger := zap.NewNop()
	result := parser.New(logger).Parse(string(text), parser.NoHints{})
	decision := alert.New(logger).Evaluate(
		types.RawMessage{ID: messageID, Text: string(text)},
		result.Trade,
		cfg.RuleSet(),
	)

	out := struct {
		Trade    *types.ParsedTrade   `json:"trade,omitempty"`
		Decision *types.AlertDecision `json:"decision"`
	}{
		Trade:    result.Trade,
		Decision: decision,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
