package underwriting

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/pkg/logger"
)

func refListing() contracts.Listing {
	return contracts.Listing{
		ID:          "mls-100",
		Source:      "rapidapi_realtor",
		City:        "Hamilton",
		Province:    "ON",
		Price:       300_000,
		Bedrooms:    3,
		Description: "Upstairs $1,800/mo, basement $1,600/mo",
	}
}

func TestUnderwriteReference(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 1)

	result, err := o.Underwrite(context.Background(), refListing())
	require.NoError(t, err)

	assert.Equal(t, "mls-100", result.ListingID)
	assert.Equal(t, 3400.0, result.RentMonthly)
	assert.InDelta(t, 515, result.CashflowMonthly, 1.0)
	assert.InDelta(t, 1.6165, result.DSCR, 0.002)
	assert.InDelta(t, 125, result.StressCashflowMonthly, 1.0)
	assert.InDelta(t, 1.307, result.StressDSCR, 0.002)
	assert.Equal(t, 85, result.MarginOfSafetyScore)
	assert.InDelta(t, 0.80, result.ConfidenceScore, 1e-9)
	assert.True(t, result.Passed)
	assert.True(t, result.CashOnCashDefined)
	assert.Len(t, result.ReasonFlags, 4)
	assert.False(t, result.UnderwrittenAt.IsZero())

	require.NotNil(t, result.Signals.UnitCountHint)
	assert.Equal(t, 2, *result.Signals.UnitCountHint)
}

func TestUnderwriteTierFallback(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 1)

	listing := contracts.Listing{
		ID:    "mls-200",
		City:  "Nowhereville",
		Price: 250_000,
	}

	result, err := o.Underwrite(context.Background(), listing)
	require.NoError(t, err)

	// Unmapped city, empty description, zero bedrooms: default tier base.
	assert.Equal(t, 1200.0, result.RentMonthly)
	assert.InDelta(t, 0.30, result.ConfidenceScore, 1e-9)
}

func TestUnderwriteInvalidListing(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 1)

	_, err := o.Underwrite(context.Background(), contracts.Listing{ID: "bad", Price: 0})
	require.Error(t, err)

	var verr contracts.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestUnderwriteCancelledContext(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Underwrite(ctx, refListing())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnderwriteIdempotent(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 1)

	first, err := o.Underwrite(context.Background(), refListing())
	require.NoError(t, err)
	second, err := o.Underwrite(context.Background(), refListing())
	require.NoError(t, err)

	// Identical except for the wall-clock stamp.
	second.UnderwrittenAt = first.UnderwrittenAt
	assert.Equal(t, first, second)
}

func TestUnderwriteBatch(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 4)

	listings := make([]contracts.Listing, 0, 6)
	for i := 0; i < 5; i++ {
		l := refListing()
		l.ID = fmt.Sprintf("mls-%d", i)
		listings = append(listings, l)
	}
	// One invalid record in the middle must not abort the batch.
	listings = append(listings[:2], append([]contracts.Listing{{ID: "broken", Price: 0}}, listings[2:]...)...)

	batch := o.UnderwriteBatch(context.Background(), listings)

	assert.NotEmpty(t, batch.RunID)
	require.Len(t, batch.Results, 5)
	require.Len(t, batch.Failures, 1)
	assert.Equal(t, "broken", batch.Failures[0].ListingID)
	assert.NotEmpty(t, batch.Failures[0].Error)

	// Input order is preserved across the worker pool.
	wantOrder := []string{"mls-0", "mls-1", "mls-2", "mls-3", "mls-4"}
	for i, r := range batch.Results {
		assert.Equal(t, wantOrder[i], r.ListingID)
	}
}

func TestUnderwriteBatchEmpty(t *testing.T) {
	o := NewOrchestrator(refConfig(), logger.Nop(), 4)

	batch := o.UnderwriteBatch(context.Background(), nil)

	assert.NotEmpty(t, batch.RunID)
	assert.Empty(t, batch.Results)
	assert.Empty(t, batch.Failures)
}

func TestRankResults(t *testing.T) {
	results := []contracts.UnderwritingResult{
		{ListingID: "a", MarginOfSafetyScore: 60, CashflowMonthly: 900},
		{ListingID: "b", MarginOfSafetyScore: 85, CashflowMonthly: 100},
		{ListingID: "c", MarginOfSafetyScore: 85, CashflowMonthly: 400},
		{ListingID: "d", MarginOfSafetyScore: 100, CashflowMonthly: 50},
	}

	RankResults(results)

	got := make([]string, len(results))
	for i, r := range results {
		got[i] = r.ListingID
	}
	assert.Equal(t, []string{"d", "c", "b", "a"}, got)
}
