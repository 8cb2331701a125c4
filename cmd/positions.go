package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/GooglyEyedGuru/polymarket-edge/pkg/config"
	"github.com/GooglyEyedGuru/polymarket-edge/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Display the running engine's positions",
	Long: `Fetches positions from the running engine's HTTP endpoint and renders
them as a table.

Examples:
  # Open positions only (default)
  polymarket-edge positions

  # Full position history including closed and rejected rows
  polymarket-edge positions --all`,
	RunE: runPositionsCmd,
}

//nolint:gochecknoglobals // Cobra boilerplate
var positionsAll bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.Flags().BoolVar(&positionsAll, "all", false, "Include closed and rejected positions")
}

func runPositionsCmd(cmd *cobra.Command, args []string) error {
	loadDotEnv()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	url := fmt.Sprintf("http://localhost:%s/positions", cfg.HTTPPort)
	if positionsAll {
		url += "?all=true"
	}

	var positions []types.Position
	if err := fetchJSON(url, &positions); err != nil {
		return err
	}

	if len(positions) == 0 {
		fmt.Println("No positions.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Question", "Side", "Size", "Entry", "Status", "PnL", "Opened"})
	table.SetBorder(false)

	for _, p := range positions {
		pnl := ""
		if p.Status == types.StatusClosed {
			pnl = fmt.Sprintf("%+.2f", p.RealizedPnL)
		}
		table.Append([]string{
			clip(p.Question, 48),
			p.Side,
			fmt.Sprintf("%.2f", p.Size),
			fmt.Sprintf("%.3f", p.EntryPrice),
			string(p.Status),
			pnl,
			p.OpenedAt.Format("Jan 2 15:04"),
		})
	}
	table.Render()
	return nil
}

func fetchJSON(url string, out any) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("is the engine running? fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
