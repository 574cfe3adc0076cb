package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/realdeal/internal/pipeline"
	"github.com/wonny/realdeal/pkg/logger"
)

const defaultScanSchedule = "0 6 * * *"

// Runner is the pipeline surface the scan job drives.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Summary, error)
}

// ScanJob runs the full fetch-filter-underwrite pipeline on a schedule.
type ScanJob struct {
	pipeline Runner
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates the scheduled scan. An empty schedule falls back
// to daily at 06:00.
func NewScanJob(p Runner, schedule string, log *logger.Logger) *ScanJob {
	if schedule == "" {
		schedule = defaultScanSchedule
	}
	return &ScanJob{
		pipeline: p,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name.
func (j *ScanJob) Name() string {
	return "scan"
}

// Schedule returns the cron schedule.
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan.
func (j *ScanJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled scan")

	summary, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("scan pipeline: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": summary.RunID,
		"kept":   summary.Kept,
		"passed": summary.Passed,
	}).Info("Scheduled scan complete")
	return nil
}
