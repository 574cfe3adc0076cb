package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Full scan: fetch, screen, underwrite, rank",
	Long: `Runs the whole pipeline in one shot.

This command:
- Fetches listings for every configured city
- Applies the price and keyword filters
- Underwrites survivors under base and stressed assumptions
- Persists the run and prints the ranked deals

Example:
  go run ./cmd/realdeal run
  go run ./cmd/realdeal run --csv out/deals.csv --json out/deals.json
  go run ./cmd/realdeal run --no-db --top 10`,
	RunE: runScan,
}

var (
	runTop     int
	runCSVPath string
	runJSON    string
	runNoDB    bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runTop, "top", 20, "number of deals to print")
	runCmd.Flags().StringVar(&runCSVPath, "csv", "", "export ranked deals to a CSV file")
	runCmd.Flags().StringVar(&runJSON, "json", "", "export full detail to a JSON file")
	runCmd.Flags().BoolVar(&runNoDB, "no-db", false, "run in memory without persisting")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RealDeal Scan ===")

	appCfg, dealCfg, log, err := initBase()
	if err != nil {
		return err
	}
	if err := appCfg.RequireRapidAPI(); err != nil {
		return err
	}

	ctx := context.Background()

	var repo *storage.Repository
	if !runNoDB {
		if err := appCfg.RequireDatabase(); err != nil {
			return err
		}
		db, err := database.New(appCfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo = storage.NewRepository(db, log)
		if err := repo.InitSchema(ctx); err != nil {
			return err
		}
	}

	p := buildPipeline(appCfg, dealCfg, repo, log)

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nRun %s: %d fetched, %d kept, %d underwritten, %d passed, %d failed\n\n",
		summary.RunID, summary.Fetched, summary.Kept, summary.Underwritten, summary.Passed, summary.Failed)
	printDealsTable(summary.Results, runTop)

	if runCSVPath != "" {
		if err := storage.ExportCSV(summary.Results, runCSVPath); err != nil {
			return err
		}
		fmt.Printf("\nCSV written to %s\n", runCSVPath)
	}
	if runJSON != "" {
		if err := storage.ExportJSON(summary.Results, summary.RunID, runJSON); err != nil {
			return err
		}
		fmt.Printf("JSON written to %s\n", runJSON)
	}

	return nil
}
