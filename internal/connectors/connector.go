package connectors

import (
	"context"

	"github.com/wonny/realdeal/internal/contracts"
)

// FetchResult is the outcome of one connector fetch. Per-city errors are
// collected rather than aborting the whole fetch; a partial result with
// errors is normal operation.
type FetchResult struct {
	Listings []contracts.Listing `json:"listings"`
	Source   string              `json:"source"`
	RawCount int                 `json:"raw_count"`
	Errors   []string            `json:"errors,omitempty"`
}

// Connector is a listing data source. Implementations normalize their
// API's payloads into the shared listing schema.
type Connector interface {
	// Fetch retrieves listings for the given cities under the price cap.
	Fetch(ctx context.Context, cities []string, maxPrice float64, province string) (*FetchResult, error)

	// SourceName identifies the data source in listings and logs.
	SourceName() string
}
