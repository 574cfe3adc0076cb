package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/connectors"
	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch listings and cache them",
	Long: `Fetches active listings for every configured city and caches
them in the database.

This command:
- Queries the listing API city by city under the price cap
- Normalizes payload variants into the shared listing schema
- Upserts the results into listings_raw

Example:
  go run ./cmd/realdeal fetch
  go run ./cmd/realdeal fetch --cities "Windsor,Sarnia"`,
	RunE: runFetch,
}

var fetchCities string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchCities, "cities", "", "comma-separated city override (default: all configured cities)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RealDeal Fetch ===")

	appCfg, dealCfg, log, err := initBase()
	if err != nil {
		return err
	}
	if err := appCfg.RequireRapidAPI(); err != nil {
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

	cities := dealCfg.AllCities()
	if fetchCities != "" {
		cities = splitCSV(fetchCities)
	}

	connector := connectors.NewRealtor(appCfg, dealCfg, log)
	result, err := connector.Fetch(ctx, cities, dealCfg.MaxPrice, dealCfg.Province)
	if err != nil {
		return fmt.Errorf("fetch listings: %w", err)
	}
	for _, fetchErr := range result.Errors {
		fmt.Printf("⚠️  %s\n", fetchErr)
	}

	written, err := repo.UpsertListings(ctx, result.Listings)
	if err != nil {
		return fmt.Errorf("store listings: %w", err)
	}

	fmt.Printf("\n✅ Fetched %d raw records across %d cities, cached %d listings\n",
		result.RawCount, len(cities), written)
	return nil
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
