package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display the running engine's risk state",
	RunE:  runStatusCmd,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	loadDotEnv()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var status struct {
		OpenPositions int                          `json:"open_positions"`
		PendingTrades int                          `json:"pending_trades"`
		TotalExposure float64                      `json:"total_exposure"`
		DailyPnL      float64                      `json:"daily_pnl"`
		Paused        bool                         `json:"paused"`
		PausedUntil   *string                      `json:"paused_until"`
		Buckets       map[types.Category]float64   `json:"bucket_exposure"`
	}
	url := fmt.Sprintf("http://localhost:%s/status", cfg.HTTPPort)
	if err := fetchJSON(url, &status); err != nil {
		return err
	}

	fmt.Printf("Open positions:  %d\n", status.OpenPositions)
	fmt.Printf("Pending trades:  %d\n", status.PendingTrades)
	fmt.Printf("Total exposure:  $%.2f\n", status.TotalExposure)
	fmt.Printf("Daily pnl:       $%+.2f\n", status.DailyPnL)
	if status.Paused && status.PausedUntil != nil {
		fmt.Printf("Circuit breaker: PAUSED until %s\n", *status.PausedUntil)
	} else {
		fmt.Println("Circuit breaker: inactive")
	}
	for bucket, exposure := range status.Buckets {
		if exposure > 0 {
			fmt.Printf("  %-14s $%.2f\n", bucket, exposure)
		}
	}
	return nil
}
