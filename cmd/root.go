package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "blockwatch",
	Short: "Crypto block-trade alert engine",
	Long: `Blockwatch consumes the block-trade alert feed, parses multi-leg
options trades out of the formatted messages, and raises alerts when a
trade clears the volume or premium thresholds.

Reference prices fall back through three tiers: the leg's own Ref price,
the message's spot-price block, and the last price seen on the feed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Optional .env for local runs; environment wins when both exist
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
