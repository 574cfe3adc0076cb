package underwriting

import (
	"fmt"
	"strings"

	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

// Margin-of-safety point table. Fixed by design: the score must be stable
// and explainable across runs, so the weights are not configuration.
const (
	marginBase            = 50
	marginStressPositive  = 25 // stress cashflow still positive
	marginStressThreshold = 15 // stress cashflow clears min_cashflow
	marginCashOnCash      = 5  // base cash-on-cash clears min_coc
	marginDSCR            = 5  // DSCR clears min_dscr under base AND stress
)

// Confidence adjustments. Applied in declaration order; each applied
// adjustment appends a note.
const (
	confBase            = 0.50
	confExplicitRent    = 0.20
	confMultiUnitCount  = 0.10
	confCondoFeeParsed  = 0.10
	confUtilitiesKnown  = 0.05
	confSuiteLegal      = 0.05
	confSuiteIllegal    = -0.10
	confCondoFeeUnknown = -0.20
	confNoBedrooms      = -0.10
	confNoDescription   = -0.10
)

// MarginOfSafety scores how much cushion a deal keeps under stress,
// 0-100, higher is safer.
func MarginOfSafety(base, stress contracts.FinancialScenario, thresholds dealconfig.PassFail) int {
	score := marginBase
	if stress.CashflowMonthly > 0 {
		score += marginStressPositive
	}
	if stress.CashflowMonthly >= thresholds.MinCashflow {
		score += marginStressThreshold
	}
	if base.CashOnCashDefined && base.CashOnCash >= thresholds.MinCOC {
		score += marginCashOnCash
	}
	if base.DSCR >= thresholds.MinDSCR && stress.DSCR >= thresholds.MinDSCR {
		score += marginDSCR
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ConfidenceScore measures how much of the underwriting rested on
// text-observed data versus defaulted assumptions. Returns the clamped
// [0,1] score and the ordered notes for every applied adjustment.
//
// An empty description suppresses all text-derived adjustments by
// construction: no signals were extracted, so none of their rules fire.
func ConfidenceScore(listing contracts.Listing, signals contracts.ListingSignals) (float64, []string) {
	score := confBase
	notes := []string{fmt.Sprintf("baseline %.2f", confBase)}

	apply := func(delta float64, label string) {
		score += delta
		notes = append(notes, fmt.Sprintf("%+.2f %s", delta, label))
	}

	if signals.HasExplicitRent() {
		apply(confExplicitRent, "explicit rent parsed")
	}
	if signals.MultiUnitSignal && signals.UnitCountHint != nil {
		apply(confMultiUnitCount, "multi-unit with known unit count")
	}
	if signals.CondoSignal && signals.CondoFeeMonthly != nil {
		apply(confCondoFeeParsed, "condo fee parsed")
	}
	if signals.UtilitiesKnown() {
		apply(confUtilitiesKnown, "utilities status known")
	}
	switch signals.LegalSuiteStatus {
	case contracts.SuiteLegal:
		apply(confSuiteLegal, "legal suite confirmed")
	case contracts.SuiteNonConforming:
		apply(confSuiteIllegal, "suite non-conforming")
	}
	if signals.CondoSignal && signals.CondoFeeMonthly == nil {
		apply(confCondoFeeUnknown, "condo keyword but fee unknown")
	}
	if listing.Bedrooms == 0 {
		apply(confNoBedrooms, "bedrooms defaulted to 0")
	}
	if strings.TrimSpace(listing.Description) == "" {
		apply(confNoDescription, "empty description")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, notes
}
