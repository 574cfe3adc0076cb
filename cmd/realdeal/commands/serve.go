package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/api"
	"github.com/wonny/realdeal/internal/api/handlers"
	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health        - Health check
  GET  /api/deals     - Ranked deals from the latest run
  GET  /api/listings  - Cached raw listings
  POST /api/scan      - Trigger a full scan

Scanning via the API requires a RapidAPI key; without one the server
still serves stored deals.

Example:
  go run ./cmd/realdeal serve
  go run ./cmd/realdeal serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (default: PORT env or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RealDeal API Server ===")

	appCfg, dealCfg, log, err := initBase()
	if err != nil {
		return err
	}
	if err := appCfg.RequireDatabase(); err != nil {
		return err
	}
	if servePort != "" {
		appCfg.Port = servePort
	}

	db, err := database.New(appCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	repo := storage.NewRepository(db, log)
	if err := repo.InitSchema(context.Background()); err != nil {
		return err
	}

	// Scan endpoint only works with API credentials.
	var scanner handlers.Scanner
	if appCfg.RequireRapidAPI() == nil {
		scanner = buildPipeline(appCfg, dealCfg, repo, log)
	} else {
		log.Warn("RAPIDAPI_KEY not set; POST /api/scan disabled")
	}

	dealsHandler := handlers.NewDealsHandler(repo, scanner, log)
	router := api.NewRouter(dealsHandler, log)
	server := api.New(appCfg, log, router)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", appCfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/deals")
	fmt.Println("  GET  /api/listings")
	fmt.Println("  POST /api/scan")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
