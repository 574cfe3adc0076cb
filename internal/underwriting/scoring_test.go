package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

func TestMarginOfSafetyReference(t *testing.T) {
	cfg := refConfig()
	base := ComputeScenario(refInputs(), cfg)
	stress := StressScenario(3400, 300_000, nil, cfg)

	// Stress cashflow is positive but below the 150 threshold, so the
	// stress-threshold points are the only ones missing.
	assert.Equal(t, 85, MarginOfSafety(base, stress, cfg.PassFail))
}

func TestMarginOfSafetyPointTable(t *testing.T) {
	thresholds := dealconfig.PassFail{MinCashflow: 150, MinDSCR: 1.15, MinCOC: 0.08}

	tests := []struct {
		name   string
		base   contracts.FinancialScenario
		stress contracts.FinancialScenario
		want   int
	}{
		{
			name:   "all cushions present",
			base:   contracts.FinancialScenario{CashflowMonthly: 500, CashOnCash: 0.12, CashOnCashDefined: true, DSCR: 1.5},
			stress: contracts.FinancialScenario{CashflowMonthly: 200, DSCR: 1.3},
			want:   100,
		},
		{
			name:   "stress dscr below minimum drops the dscr bonus",
			base:   contracts.FinancialScenario{CashflowMonthly: 500, CashOnCash: 0.12, CashOnCashDefined: true, DSCR: 1.5},
			stress: contracts.FinancialScenario{CashflowMonthly: 200, DSCR: 1.0},
			want:   95,
		},
		{
			name:   "negative stress cashflow keeps only base points",
			base:   contracts.FinancialScenario{CashflowMonthly: 500, CashOnCash: 0.12, CashOnCashDefined: true, DSCR: 1.5},
			stress: contracts.FinancialScenario{CashflowMonthly: -10, DSCR: 1.3},
			want:   60,
		},
		{
			name:   "undefined cash-on-cash earns no coc points",
			base:   contracts.FinancialScenario{CashflowMonthly: 500, CashOnCash: 0, CashOnCashDefined: false, DSCR: 1.5},
			stress: contracts.FinancialScenario{CashflowMonthly: 200, DSCR: 1.3},
			want:   95,
		},
		{
			name:   "no cushions at all",
			base:   contracts.FinancialScenario{CashflowMonthly: 50, CashOnCash: 0.02, CashOnCashDefined: true, DSCR: 1.0},
			stress: contracts.FinancialScenario{CashflowMonthly: -100, DSCR: 0.9},
			want:   50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarginOfSafety(tt.base, tt.stress, thresholds)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestConfidenceScoreReference(t *testing.T) {
	listing := contracts.Listing{
		Bedrooms:    3,
		Description: "Upstairs $1,800/mo, basement $1,600/mo",
	}
	signals := ExtractSignals(listing.Description)

	score, notes := ConfidenceScore(listing, signals)

	assert.InDelta(t, 0.80, score, 1e-9)
	require.Len(t, notes, 3)
	assert.Equal(t, "baseline 0.50", notes[0])
	assert.Equal(t, "+0.20 explicit rent parsed", notes[1])
	assert.Equal(t, "+0.10 multi-unit with known unit count", notes[2])
}

func TestConfidenceScoreEmptyDescription(t *testing.T) {
	listing := contracts.Listing{Bedrooms: 0, Description: ""}
	signals := ExtractSignals(listing.Description)

	score, notes := ConfidenceScore(listing, signals)

	assert.InDelta(t, 0.30, score, 1e-9)
	require.Len(t, notes, 3)
	assert.Equal(t, "baseline 0.50", notes[0])
	assert.Contains(t, notes[1], "bedrooms defaulted")
	assert.Contains(t, notes[2], "empty description")
}

func TestConfidenceScoreCondoFeeUnknownPenalty(t *testing.T) {
	listing := contracts.Listing{Bedrooms: 2, Description: "Spacious condominium in the core"}
	signals := ExtractSignals(listing.Description)

	score, notes := ConfidenceScore(listing, signals)

	assert.InDelta(t, 0.30, score, 1e-9)
	assert.Contains(t, notes, "-0.20 condo keyword but fee unknown")
}

func TestConfidenceScoreClamped(t *testing.T) {
	// Every negative adjustment at once floors the score at zero.
	listing := contracts.Listing{Bedrooms: 0, Description: ""}
	signals := contracts.ListingSignals{
		UtilitiesStatus:  contracts.UtilitiesUnknown,
		LegalSuiteStatus: contracts.SuiteNonConforming,
		CondoSignal:      true,
	}

	score, _ := ConfidenceScore(listing, signals)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.InDelta(t, 0.0, score, 1e-9)

	// Every positive signal at once caps at one.
	rent := 2000.0
	units := 2
	fee := 300.0
	full := contracts.ListingSignals{
		ExplicitRentMonthly: &rent,
		UnitCountHint:       &units,
		CondoFeeMonthly:     &fee,
		UtilitiesStatus:     contracts.UtilitiesIncluded,
		LegalSuiteStatus:    contracts.SuiteLegal,
		MultiUnitSignal:     true,
		CondoSignal:         true,
	}
	rich := contracts.Listing{Bedrooms: 3, Description: "legal duplex"}

	score, _ = ConfidenceScore(rich, full)
	assert.LessOrEqual(t, score, 1.0)
	assert.InDelta(t, 1.0, score, 1e-9)
}
