package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GooglyEyedGuru/polymarket-edge/internal/app"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the evaluation and decision engine",
	Long: `Starts the engine, which will:
1. Scan active markets on a fixed interval
2. Classify them and price each admitted market with its category model
3. Size opportunities with half-Kelly and run them through the risk ledger
4. Auto-execute small high-conviction trades, queue the rest for approval
5. Watch open positions for stop-loss, take-profit, and settlement exits

The approval channel (Telegram) is polled independently for
approve/reject commands and position actions.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runEngine(cmd *cobra.Command, args []string) error {
	loadDotEnv()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger, err := config.NewLogger()
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

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
