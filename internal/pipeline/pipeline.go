package pipeline

import (
	"context"
	"fmt"

	"github.com/wonny/realdeal/internal/connectors"
	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
	"github.com/wonny/realdeal/internal/filters"
	"github.com/wonny/realdeal/internal/underwriting"
	"github.com/wonny/realdeal/pkg/logger"
)

// Pipeline runs the full scan: fetch listings, screen them, underwrite
// the survivors, and persist the run. The repository is optional; a nil
// repo runs everything in memory (fetch and report commands handle
// their own export).
type Pipeline struct {
	connector connectors.Connector
	filter    *filters.Filter
	orch      *underwriting.Orchestrator
	repo      Store
	cfg       *dealconfig.Config
	logger    *logger.Logger
}

// Store is the subset of the repository the pipeline writes through.
type Store interface {
	UpsertListings(ctx context.Context, listings []contracts.Listing) (int, error)
	SaveResults(ctx context.Context, runID string, results []contracts.UnderwritingResult) error
}

// Summary reports what one pipeline run did.
type Summary struct {
	RunID        string `json:"run_id"`
	Fetched      int    `json:"fetched"`
	Kept         int    `json:"kept"`
	Underwritten int    `json:"underwritten"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`

	Results  []contracts.UnderwritingResult `json:"results"`
	Failures []contracts.ListingFailure     `json:"failures,omitempty"`
}

func New(conn connectors.Connector, filter *filters.Filter, orch *underwriting.Orchestrator, repo Store, cfg *dealconfig.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		connector: conn,
		filter:    filter,
		orch:      orch,
		repo:      repo,
		cfg:       cfg,
		logger:    log,
	}
}

// Run executes one full scan over every configured city. Results come
// back ranked by margin of safety, then cashflow.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	cities := p.cfg.AllCities()
	if len(cities) == 0 {
		return nil, fmt.Errorf("no cities configured")
	}

	fetched, err := p.connector.Fetch(ctx, cities, p.cfg.MaxPrice, p.cfg.Province)
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}
	for _, fetchErr := range fetched.Errors {
		p.logger.WithField("error", fetchErr).Warn("Partial fetch failure")
	}

	return p.Underwrite(ctx, fetched.Listings, fetched.RawCount)
}

// Underwrite screens and underwrites an already-fetched set of
// listings, persisting the run when a store is configured.
func (p *Pipeline) Underwrite(ctx context.Context, listings []contracts.Listing, rawCount int) (*Summary, error) {
	kept, stats := p.filter.Apply(listings)

	if p.repo != nil && len(kept) > 0 {
		if _, err := p.repo.UpsertListings(ctx, kept); err != nil {
			return nil, fmt.Errorf("persist listings: %w", err)
		}
	}

	batch := p.orch.UnderwriteBatch(ctx, kept)
	underwriting.RankResults(batch.Results)

	if p.repo != nil && len(batch.Results) > 0 {
		if err := p.repo.SaveResults(ctx, batch.RunID, batch.Results); err != nil {
			return nil, fmt.Errorf("persist results: %w", err)
		}
	}

	passed := 0
	for _, res := range batch.Results {
		if res.Passed {
			passed++
		}
	}

	summary := &Summary{
		RunID:        batch.RunID,
		Fetched:      rawCount,
		Kept:         stats.Kept,
		Underwritten: len(batch.Results),
		Passed:       passed,
		Failed:       len(batch.Failures),
		Results:      batch.Results,
		Failures:     batch.Failures,
	}

	p.logger.WithFields(map[string]interface{}{
		"run_id":       summary.RunID,
		"fetched":      summary.Fetched,
		"kept":         summary.Kept,
		"underwritten": summary.Underwritten,
		"passed":       summary.Passed,
		"failed":       summary.Failed,
	}).Info("Pipeline run complete")

	return summary, nil
}
