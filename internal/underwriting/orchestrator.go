package underwriting

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
	"github.com/wonny/realdeal/pkg/logger"
)

// defaultWorkers bounds batch concurrency when the caller does not.
const defaultWorkers = 8

// Orchestrator composes the underwriting pipeline per listing:
// signals -> rent -> base scenario -> stress scenario -> scoring -> pass/fail.
// Every component is a pure function over immutable inputs, so batches run
// on independent workers with no locking.
type Orchestrator struct {
	cfg     *dealconfig.Config
	logger  *logger.Logger
	workers int
}

// NewOrchestrator creates an orchestrator. The config must already be
// validated by dealconfig.Load; workers <= 0 selects the default.
func NewOrchestrator(cfg *dealconfig.Config, log *logger.Logger, workers int) *Orchestrator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Orchestrator{
		cfg:     cfg,
		logger:  log,
		workers: workers,
	}
}

// Underwrite runs the full pipeline on one listing.
func (o *Orchestrator) Underwrite(ctx context.Context, listing contracts.Listing) (*contracts.UnderwritingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := listing.Validate(); err != nil {
		return nil, err
	}

	signals := ExtractSignals(listing.Description)
	rentMonthly := EstimateRent(signals, listing, o.cfg)

	base := ComputeScenario(FinanceInputs{
		RentMonthly:     rentMonthly,
		Price:           listing.Price,
		VacancyRate:     o.cfg.Underwriting.VacancyRate,
		InterestRate:    o.cfg.Underwriting.InterestRate,
		CondoFeeMonthly: signals.CondoFeeMonthly,
	}, o.cfg)
	stress := StressScenario(rentMonthly, listing.Price, signals.CondoFeeMonthly, o.cfg)

	margin := MarginOfSafety(base, stress, o.cfg.PassFail)
	confidence, notes := ConfidenceScore(listing, signals)
	passed, flags := EvaluatePassFail(base, stress, o.cfg.PassFail)

	result := &contracts.UnderwritingResult{
		ListingID: listing.ID,
		Listing:   listing,

		RentMonthly:       base.RentMonthly,
		NOIAnnual:         base.NOIAnnual,
		PITIMonthly:       base.PITIMonthly,
		CashflowMonthly:   base.CashflowMonthly,
		CapRate:           base.CapRate,
		CashOnCash:        base.CashOnCash,
		CashOnCashDefined: base.CashOnCashDefined,
		DSCR:              base.DSCR,

		StressRentMonthly:     stress.RentMonthly,
		StressNOIAnnual:       stress.NOIAnnual,
		StressCashflowMonthly: stress.CashflowMonthly,
		StressDSCR:            stress.DSCR,

		MarginOfSafetyScore: margin,
		ConfidenceScore:     confidence,
		ConfidenceNotes:     notes,
		Signals:             signals,
		ReasonFlags:         flags,
		Passed:              passed,

		UnderwrittenAt: time.Now().UTC(),
	}

	o.logger.WithFields(map[string]interface{}{
		"listing_id": listing.ID,
		"city":       listing.City,
		"rent":       rentMonthly,
		"cashflow":   base.CashflowMonthly,
		"margin":     margin,
		"confidence": confidence,
		"passed":     passed,
	}).Debug("Listing underwritten")

	return result, nil
}

// UnderwriteBatch underwrites all listings on a bounded worker pool.
// Per-listing failures are captured as BatchResult.Failures; a bad record
// never aborts the run. Result order follows input order.
func (o *Orchestrator) UnderwriteBatch(ctx context.Context, listings []contracts.Listing) *contracts.BatchResult {
	batch := &contracts.BatchResult{
		RunID:    uuid.NewString(),
		Results:  make([]contracts.UnderwritingResult, 0, len(listings)),
		Failures: make([]contracts.ListingFailure, 0),
	}

	type outcome struct {
		index   int
		result  *contracts.UnderwritingResult
		failure *contracts.ListingFailure
	}

	jobs := make(chan int)
	outcomes := make(chan outcome, len(listings))

	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result, err := o.underwriteSafe(ctx, listings[i])
				if err != nil {
					outcomes <- outcome{index: i, failure: &contracts.ListingFailure{
						ListingID: listings[i].ID,
						Error:     err.Error(),
					}}
					continue
				}
				outcomes <- outcome{index: i, result: result}
			}
		}()
	}

	for i := range listings {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	collected := make([]outcome, 0, len(listings))
	for out := range outcomes {
		collected = append(collected, out)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })

	for _, out := range collected {
		if out.failure != nil {
			batch.Failures = append(batch.Failures, *out.failure)
			continue
		}
		batch.Results = append(batch.Results, *out.result)
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   batch.RunID,
		"total":    len(listings),
		"results":  len(batch.Results),
		"failures": len(batch.Failures),
	}).Info("Batch underwriting completed")

	return batch
}

// underwriteSafe converts a panic in the pipeline into a per-listing error
// so one malformed record cannot take down a batch worker.
func (o *Orchestrator) underwriteSafe(ctx context.Context, listing contracts.Listing) (result *contracts.UnderwritingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("underwriting panic: %v", r)
		}
	}()
	return o.Underwrite(ctx, listing)
}

// RankResults orders results for reporting: margin of safety descending,
// then monthly cashflow descending.
func RankResults(results []contracts.UnderwritingResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].MarginOfSafetyScore != results[j].MarginOfSafetyScore {
			return results[i].MarginOfSafetyScore > results[j].MarginOfSafetyScore
		}
		return results[i].CashflowMonthly > results[j].CashflowMonthly
	})
}
