package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/realdeal/internal/scheduler"
	"github.com/wonny/realdeal/internal/scheduler/jobs"
	"github.com/wonny/realdeal/internal/storage"
	"github.com/wonny/realdeal/pkg/database"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scan on a cron schedule",
	Long: `Starts the scheduler daemon with the scan job registered.

The scan job runs the full fetch-filter-underwrite pipeline and
persists each run. Failed runs are retried up to three times.

Example:
  go run ./cmd/realdeal schedule
  go run ./cmd/realdeal schedule --cron "0 */6 * * *"`,
	RunE: runSchedule,
}

var scheduleCron string

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", `cron schedule for the scan (default "0 6 * * *")`)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RealDeal Scheduler ===")

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

	repo := storage.NewRepository(db, log)
	if err := repo.InitSchema(context.Background()); err != nil {
		return err
	}

	p := buildPipeline(appCfg, dealCfg, repo, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewScanJob(p, scheduleCron, log)); err != nil {
		return err
	}

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}
