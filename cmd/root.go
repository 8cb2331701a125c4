package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "polymarket-edge",
	Short: "Prediction-market evaluation and decision engine",
	Long: `polymarket-edge continuously scans prediction markets, estimates a
fair probability per contract with category-specific models, sizes
positions with a capped half-Kelly rule, and routes opportunities to
automatic execution or a human approval queue.

Open positions are monitored every cycle for stop-loss, take-profit,
and settlement exits. A risk ledger with exposure caps and a daily
loss circuit breaker sits in front of every trade.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadDotEnv loads a .env file when present. Missing files are fine;
// production deployments inject real environment variables.
func loadDotEnv() {
	_ = godotenv.Load()
}
