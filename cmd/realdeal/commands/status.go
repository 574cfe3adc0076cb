package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check database connectivity and latest run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	fmt.Println("Database:")
	fmt.Printf("  Healthy: %t\n", health.Healthy)
	fmt.Printf("  Latency: %s\n", health.ResponseTime)

	stats := db.Stats()
	fmt.Printf("  Conns:   %d total, %d idle, %d max\n",
		stats.TotalConns, stats.IdleConns, stats.MaxConns)

	repo := storage.NewRepository(db, log)
	runID, err := repo.LatestRunID(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\nUnderwriting:")
	if runID == "" {
		fmt.Println("  No runs recorded")
	} else {
		fmt.Printf("  Latest run: %s\n", runID)
	}

	return nil
}
