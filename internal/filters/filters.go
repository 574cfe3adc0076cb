package filters

import (
	"strings"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
	"github.com/wonny/realdeal/pkg/logger"
)

// Filter screens fetched listings before underwriting: price window first,
// then keyword exclusion, then the optional include-match requirement.
// Filtering is cheap relative to underwriting, so everything that can be
// rejected here should be.
type Filter struct {
	cfg    *dealconfig.Config
	logger *logger.Logger
}

// Stats counts why listings were dropped in one Apply call.
type Stats struct {
	Input           int `json:"input"`
	Kept            int `json:"kept"`
	PriceRejected   int `json:"price_rejected"`
	ExcludeRejected int `json:"exclude_rejected"`
	IncludeRejected int `json:"include_rejected"`
}

func New(cfg *dealconfig.Config, log *logger.Logger) *Filter {
	return &Filter{cfg: cfg, logger: log}
}

// Apply returns the listings that survive all screens, preserving input
// order, along with per-reason drop counts.
func (f *Filter) Apply(listings []contracts.Listing) ([]contracts.Listing, Stats) {
	stats := Stats{Input: len(listings)}
	kept := make([]contracts.Listing, 0, len(listings))

	for _, listing := range listings {
		switch {
		case !f.priceOK(listing):
			stats.PriceRejected++
		case f.excluded(listing):
			stats.ExcludeRejected++
		case !f.includeOK(listing):
			stats.IncludeRejected++
		default:
			kept = append(kept, listing)
		}
	}

	stats.Kept = len(kept)
	f.logger.WithFields(map[string]interface{}{
		"input":            stats.Input,
		"kept":             stats.Kept,
		"price_rejected":   stats.PriceRejected,
		"exclude_rejected": stats.ExcludeRejected,
		"include_rejected": stats.IncludeRejected,
	}).Info("Listings filtered")

	return kept, stats
}

// priceOK enforces the price window. The lower bound screens out parking
// spots and data errors, the upper bound the configured budget.
func (f *Filter) priceOK(listing contracts.Listing) bool {
	if listing.Price < f.cfg.DataSource.MinPrice {
		return false
	}
	if f.cfg.MaxPrice > 0 && listing.Price > f.cfg.MaxPrice {
		return false
	}
	return true
}

func (f *Filter) excluded(listing contracts.Listing) bool {
	text := strings.ToLower(listing.Description)
	for _, keyword := range f.cfg.KeywordFilters.Exclude {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// includeOK requires at least one include keyword when the config demands
// it. An empty include list never rejects.
func (f *Filter) includeOK(listing contracts.Listing) bool {
	if !f.cfg.KeywordFilters.RequireIncludeMatch || len(f.cfg.KeywordFilters.Include) == 0 {
		return true
	}
	text := strings.ToLower(listing.Description)
	for _, keyword := range f.cfg.KeywordFilters.Include {
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
