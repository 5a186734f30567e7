package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bat-ads/internal/config/configs"
)

var rootCmd = &cobra.Command{
	Use:   "bat-ads",
	Short: "Ad confirmation and eligibility serving engine.",
	Long: `bat-ads serves eligible ads from a creative catalog, records ad events and
confirms them to the ad server with unlinkable privacy tokens.

Configuration is read from the environment; see internal/config.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// main is the entry point of bat-ads. Subcommands register themselves in
// their init functions.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger initialises the structured logger based on configuration.
func newLogger(cfg configs.Logger) *slog.Logger {
	return cfg.NewLogger(os.Stdout)
}
