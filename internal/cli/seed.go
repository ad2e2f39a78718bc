package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the graph with a minimal NVIDIA example",
	Long: `Load a small fixture: one company, two earnings events, a source
with two claims, and sentiment signals for both periods. Useful for
trying the /ask endpoint before running a real refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, cleanup, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := seedMinimal(ctx, app); err != nil {
			return err
		}
		fmt.Println("Seed complete.")
		return nil
	},
}

func seedMinimal(ctx context.Context, app *app) error {
	companyID, err := app.store.MergeCompany(ctx, "NVIDIA", "NVDA")
	if err != nil {
		return err
	}

	latestDate := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	prevDate := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)
	evLatest, err := app.store.MergeEvent(ctx, companyID, "earnings", "Q3-2025", &latestDate)
	if err != nil {
		return err
	}
	evPrev, err := app.store.MergeEvent(ctx, companyID, "earnings", "Q2-2025", &prevDate)
	if err != nil {
		return err
	}

	published := latestDate
	sourceID, err := app.store.MergeSource(ctx, model.SourceDoc{
		URL:         "https://example.com/nvda-earnings-recap",
		Title:       "NVIDIA earnings recap",
		RawText:     "NVIDIA posted strong results and raised guidance...",
		Category:    model.CategoryNews,
		FetchedAt:   time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC), // deliberately old so freshness flags it
		PublishedAt: &published,
		Query:       "nvidia earnings Q3 2025 recap",
		SiteName:    "Example News",
	})
	if err != nil {
		return err
	}
	if err := app.store.LinkSourceMentionsCompany(ctx, sourceID, companyID); err != nil {
		return err
	}

	claims := []model.Claim{
		{
			CompanyName: "NVIDIA", Period: "Q3-2025",
			Text: "Guidance was raised for next quarter.", Type: model.ClaimTypeGuidance,
			Direction: model.DirectionUp, Confidence: 0.85,
			Evidence: "raised guidance",
		},
		{
			CompanyName: "NVIDIA", Period: "Q3-2025",
			Text: "AI/data center demand remained strong.", Type: model.ClaimTypeDemand,
			Direction: model.DirectionUp, Confidence: 0.80,
			Evidence: "posted strong results",
		},
	}
	for _, claim := range claims {
		if _, err := app.store.MergeClaim(ctx, companyID, evLatest, sourceID, claim); err != nil {
			return err
		}
	}

	signals := []model.Signal{
		{CompanyID: companyID, EventID: evLatest, Type: "sentiment", Score: 0.62, Volume: 1200, Window: "post_earnings_7d"},
		{CompanyID: companyID, EventID: evPrev, Type: "sentiment", Score: 0.41, Volume: 900, Window: "post_earnings_7d"},
	}
	for _, sig := range signals {
		if _, err := app.store.MergeSignal(ctx, sig); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
