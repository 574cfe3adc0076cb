package contracts

// UtilitiesStatus reports who pays utilities according to the listing text.
type UtilitiesStatus string

const (
	UtilitiesUnknown    UtilitiesStatus = "unknown"
	UtilitiesIncluded   UtilitiesStatus = "included"
	UtilitiesTenantPays UtilitiesStatus = "tenant_pays"
)

// LegalSuiteStatus reports whether a secondary suite is legal.
type LegalSuiteStatus string

const (
	SuiteUnknown       LegalSuiteStatus = "unknown"
	SuiteLegal         LegalSuiteStatus = "legal"
	SuiteNonConforming LegalSuiteStatus = "non_conforming"
)

// ListingSignals holds the structured facts extracted from a listing
// description. Every field is independently optional: a nil pointer or
// "unknown" status means the text said nothing, never that the value is zero.
type ListingSignals struct {
	// ExplicitRentMonthly is the parsed rent, or the sum of per-unit rents
	// when two or more unit-labeled mentions were found.
	ExplicitRentMonthly *float64 `json:"explicit_rent_monthly,omitempty"`

	// UnitCountHint is the number of rental units suggested by the text,
	// from summed rent mentions or from multi-unit keywords.
	UnitCountHint *int `json:"unit_count_hint,omitempty"`

	// CondoFeeMonthly is the parsed condo/maintenance/HOA fee, accepted
	// only inside the sane range.
	CondoFeeMonthly *float64 `json:"condo_fee_monthly,omitempty"`

	UtilitiesStatus  UtilitiesStatus  `json:"utilities_status"`
	LegalSuiteStatus LegalSuiteStatus `json:"legal_suite_status"`

	// MultiUnitSignal is true when any multi-unit keyword appeared,
	// even if no rent amount could be parsed.
	MultiUnitSignal bool `json:"multi_unit_signal"`

	// CondoSignal is true when any condo/fee keyword appeared, whether or
	// not a fee amount was parsed. Feeds the confidence penalty.
	CondoSignal bool `json:"condo_signal"`
}

// HasExplicitRent reports whether a positive rent was parsed from the text.
func (s *ListingSignals) HasExplicitRent() bool {
	return s.ExplicitRentMonthly != nil && *s.ExplicitRentMonthly > 0
}

// UtilitiesKnown reports whether the text settled who pays utilities.
func (s *ListingSignals) UtilitiesKnown() bool {
	return s.UtilitiesStatus != UtilitiesUnknown
}
