package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the latest run's ranked deals",
	Long: `Prints the top deals from the most recent underwriting run.

Example:
  go run ./cmd/realdeal report
  go run ./cmd/realdeal report --limit 10 --passed
  go run ./cmd/realdeal report --csv out/deals.csv`,
	RunE: runReport,
}

var (
	reportLimit   int
	reportPassed  bool
	reportCSVPath string
	reportJSON    string
	reportReasons bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "number of deals to show")
	reportCmd.Flags().BoolVar(&reportPassed, "passed", false, "only deals that cleared every threshold")
	reportCmd.Flags().StringVar(&reportCSVPath, "csv", "", "export to a CSV file")
	reportCmd.Flags().StringVar(&reportJSON, "json", "", "export full detail to a JSON file")
	reportCmd.Flags().BoolVar(&reportReasons, "reasons", false, "show failed thresholds per deal")
}

func runReport(cmd *cobra.Command, args []string) error {
	appCfg, _, log, err := initBase()
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

	runID, err := repo.LatestRunID(ctx)
	if err != nil {
		return err
	}
	if runID == "" {
		fmt.Println("No underwriting runs yet; run the pipeline first")
		return nil
	}

	deals, err := repo.TopDeals(ctx, reportLimit, reportPassed)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %d deals\n\n", runID, len(deals))
	printDealsTable(deals, reportLimit)

	if reportReasons {
		fmt.Println()
		for _, deal := range deals {
			if deal.Passed {
				continue
			}
			fmt.Printf("%s:\n", deal.ListingID)
			printFailReasons(deal)
		}
	}

	if reportCSVPath != "" {
		if err := storage.ExportCSV(deals, reportCSVPath); err != nil {
			return err
		}
		fmt.Printf("\nCSV written to %s\n", reportCSVPath)
	}
	if reportJSON != "" {
		if err := storage.ExportJSON(deals, runID, reportJSON); err != nil {
			return err
		}
		fmt.Printf("JSON written to %s\n", reportJSON)
	}

	return nil
}
