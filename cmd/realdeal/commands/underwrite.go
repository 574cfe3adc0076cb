package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/filters"
	"github.com/wonny/realdeal/internal/pipeline"
	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/internal/underwriting"
	"github.com/wonny/realdeal/pkg/database"
)

// underwriteCmd represents the underwrite command
var underwriteCmd = &cobra.Command{
	Use:   "underwrite",
	Short: "Underwrite cached listings",
	Long: `Screens and underwrites every cached listing without fetching.

This command:
- Loads listings from listings_raw
- Applies the price and keyword filters
- Underwrites survivors under base and stressed assumptions
- Saves the run and prints the ranked deals

Useful for re-running a new strategy file against old data.

Example:
  go run ./cmd/realdeal underwrite
  go run ./cmd/realdeal underwrite --strategy config/aggressive.yaml --top 10`,
	RunE: runUnderwrite,
}

var underwriteTop int

func init() {
	rootCmd.AddCommand(underwriteCmd)

	underwriteCmd.Flags().IntVar(&underwriteTop, "top", 20, "number of deals to print")
}

func runUnderwrite(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RealDeal Underwrite ===")

	appCfg, dealCfg, log, err := initBase()
	if err != nil {
		return err
	}
	if err := appCfg.RequireDatabase(); err != nil {
		return err
	}

	db, err := database.New(appCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	repo := storage.NewRepository(db, log)
	if err := repo.InitSchema(ctx); err != nil {
		return err
	}

	listings, err := repo.LoadListings(ctx)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		fmt.Println("No cached listings; run fetch first")
		return nil
	}

	filter := filters.New(dealCfg, log)
	orch := underwriting.NewOrchestrator(dealCfg, log, appCfg.Workers)
	p := pipeline.New(nil, filter, orch, repo, dealCfg, log)

	summary, err := p.Underwrite(ctx, listings, len(listings))
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s: %d listings, %d kept, %d underwritten, %d passed, %d failed\n\n",
		summary.RunID, summary.Fetched, summary.Kept, summary.Underwritten, summary.Passed, summary.Failed)
	printDealsTable(summary.Results, underwriteTop)

	return nil
}
