package contracts

import "time"

// FinancialScenario is one full pass of the finance model: the inputs it ran
// with and every metric it produced. The same shape is computed twice per
// listing, once with base assumptions and once under stress.
type FinancialScenario struct {
	// Inputs
	RentMonthly  float64 `json:"rent_monthly"`
	VacancyRate  float64 `json:"vacancy_rate"`
	InterestRate float64 `json:"interest_rate"`

	// Outputs
	NOIAnnual       float64 `json:"noi_annual"`
	MortgagePayment float64 `json:"mortgage_payment_monthly"`
	PITIMonthly     float64 `json:"piti_monthly"`
	CashflowMonthly float64 `json:"cashflow_monthly"`
	CapRate         float64 `json:"cap_rate"`
	CashOnCash      float64 `json:"cash_on_cash"`
	DSCR            float64 `json:"dscr"`

	// CashOnCashDefined is false when total cash invested is zero, in which
	// case CashOnCash carries no meaning (reported as 0, never a fault).
	CashOnCashDefined bool `json:"cash_on_cash_defined"`
}

// ReasonFlag records one pass/fail threshold check. Flags are always
// populated for every check, not only on failure.
type ReasonFlag struct {
	Passed    bool    `json:"passed"`
	Observed  float64 `json:"observed"`
	Threshold float64 `json:"threshold"`
}

// Reason flag keys, one per threshold check.
const (
	FlagCashflow       = "cashflow"
	FlagStressCashflow = "stress_cashflow"
	FlagCashOnCash     = "cash_on_cash"
	FlagDSCR           = "dscr"
)

// UnderwritingResult is the full output for one listing. It is created once
// per listing per run and never mutated after construction. The field set is
// flat so it serializes directly to tabular and structured formats.
type UnderwritingResult struct {
	ListingID string  `json:"listing_id"`
	Listing   Listing `json:"listing"`

	// Base scenario
	RentMonthly     float64 `json:"rent_monthly"`
	NOIAnnual       float64 `json:"noi_annual"`
	PITIMonthly     float64 `json:"piti_monthly"`
	CashflowMonthly float64 `json:"cashflow_monthly"`
	CapRate         float64 `json:"cap_rate"`
	CashOnCash      float64 `json:"cash_on_cash"`
	DSCR            float64 `json:"dscr"`

	// CashOnCashDefined mirrors the base scenario: false means zero cash
	// was invested and CashOnCash is reported as 0.
	CashOnCashDefined bool `json:"cash_on_cash_defined"`

	// Stress scenario
	StressRentMonthly     float64 `json:"stress_rent_monthly"`
	StressNOIAnnual       float64 `json:"stress_noi_annual"`
	StressCashflowMonthly float64 `json:"stress_cashflow_monthly"`
	StressDSCR            float64 `json:"stress_dscr"`

	MarginOfSafetyScore int     `json:"margin_of_safety_score"`
	ConfidenceScore     float64 `json:"confidence_score"`

	// ConfidenceNotes lists every applied confidence adjustment in the
	// order it was evaluated.
	ConfidenceNotes []string `json:"confidence_notes"`

	Signals     ListingSignals        `json:"signals"`
	ReasonFlags map[string]ReasonFlag `json:"reason_flags"`
	Passed      bool                  `json:"passed"`

	UnderwrittenAt time.Time `json:"underwritten_at"`
}

// ListingFailure records a listing that could not be underwritten. Failures
// are attached to the batch result; they never abort the run.
type ListingFailure struct {
	ListingID string `json:"listing_id"`
	Error     string `json:"error"`
}

// BatchResult is the outcome of underwriting a batch of listings.
type BatchResult struct {
	RunID    string               `json:"run_id"`
	Results  []UnderwritingResult `json:"results"`
	Failures []ListingFailure     `json:"failures"`
}
