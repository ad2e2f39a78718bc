package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pulsegraph/pulsegraph/internal/refresh"
)

var (
	refreshCompany string
	refreshTicker  string
	refreshPeriod  string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh for a company and period",
	Long: `Discover coverage of an earnings period, fetch and extract claims,
and merge them into the graph. Prints the run summary as JSON.

The run is idempotent: repeating it with unchanged sources changes no
counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, cleanup, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := app.orchestrator.Run(ctx, refresh.Request{
			CompanyName: refreshCompany,
			Ticker:      refreshTicker,
			Period:      refreshPeriod,
		})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	refreshCmd.Flags().StringVar(&refreshCompany, "company", "", "company name (required)")
	refreshCmd.Flags().StringVar(&refreshTicker, "ticker", "", "ticker symbol")
	refreshCmd.Flags().StringVar(&refreshPeriod, "period", "", "earnings period, e.g. Q3-2025 (required)")
	_ = refreshCmd.MarkFlagRequired("company")
	_ = refreshCmd.MarkFlagRequired("period")

	rootCmd.AddCommand(refreshCmd)
}
