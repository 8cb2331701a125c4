package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Display trades waiting in the approval queue",
	RunE:  runPendingCmd,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(pendingCmd)
}

func runPendingCmd(cmd *cobra.Command, args []string) error {
	loadDotEnv()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var trades []types.PendingTrade
	url := fmt.Sprintf("http://localhost:%s/pending", cfg.HTTPPort)
	if err := fetchJSON(url, &trades); err != nil {
		return err
	}

	if len(trades) == 0 {
		fmt.Println("Approval queue is empty.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Question", "Side", "Model", "Edge", "Conf", "Size", "Waiting"})
	table.SetBorder(false)

	for i, t := range trades {
		r := t.Result
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			clip(t.Market.Question, 48),
			r.Side,
			r.Model,
			fmt.Sprintf("%.1f", r.Edge()),
			fmt.Sprintf("%.0f", r.Confidence),
			fmt.Sprintf("%.2f", t.ProposedSize),
			time.Since(t.EnqueuedAt).Round(time.Minute).String(),
		})
	}
	table.Render()
	fmt.Println("\nOldest entry is approved/rejected first from the approval channel.")
	return nil
}
