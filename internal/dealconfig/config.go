package dealconfig

// Config is the full underwriting strategy configuration.
// Loaded once at startup, validated eagerly, then treated as immutable.
type Config struct {
	MaxPrice float64 `yaml:"max_price" json:"max_price"`
	Province string  `yaml:"province" json:"province"`

	Underwriting Underwriting `yaml:"underwriting" json:"underwriting"`
	Stress       Stress       `yaml:"stress" json:"stress"`
	PassFail     PassFail     `yaml:"pass_fail" json:"pass_fail"`

	// RentTiers maps a tier name to its fallback rent formula parameters.
	RentTiers   map[string]RentTier `yaml:"rent_tiers" json:"rent_tiers"`
	DefaultTier string              `yaml:"default_tier" json:"default_tier"`

	// Cities maps a tier name to the cities it covers. Every tier named
	// here must exist in RentTiers.
	Cities map[string][]string `yaml:"cities" json:"cities"`

	// MortgageInsurance is the loan-to-value band premium table. The exact
	// percentages are jurisdiction policy, not law baked into code; the
	// defaults are CMHC-like illustrative values.
	MortgageInsurance []InsuranceBand `yaml:"mortgage_insurance" json:"mortgage_insurance"`

	KeywordFilters KeywordFilters `yaml:"keyword_filters" json:"keyword_filters"`
	DataSource     DataSource     `yaml:"data_source" json:"data_source"`
}

// Underwriting holds the base-case financial assumptions.
type Underwriting struct {
	VacancyRate       float64 `yaml:"vacancy_rate" json:"vacancy_rate"`
	ManagementPct     float64 `yaml:"management_pct" json:"management_pct"`
	MaintenancePct    float64 `yaml:"maintenance_pct" json:"maintenance_pct"`
	CapexPct          float64 `yaml:"capex_pct" json:"capex_pct"`
	PropertyTaxRate   float64 `yaml:"property_tax_rate" json:"property_tax_rate"`
	AnnualInsurance   float64 `yaml:"annual_insurance" json:"annual_insurance"`
	AnnualUtilities   float64 `yaml:"annual_utilities" json:"annual_utilities"`
	AnnualSnowLawn    float64 `yaml:"annual_snow_lawn" json:"annual_snow_lawn"`
	DownPaymentPct    float64 `yaml:"down_payment_pct" json:"down_payment_pct"`
	InterestRate      float64 `yaml:"interest_rate" json:"interest_rate"`
	AmortizationYears int     `yaml:"amortization_years" json:"amortization_years"`
	ClosingCosts      float64 `yaml:"closing_costs" json:"closing_costs"`
}

// Stress holds the deltas applied to the base case for the stress scenario.
// All deltas are non-negative; they always make the scenario worse.
type Stress struct {
	RentHaircut float64 `yaml:"rent_haircut" json:"rent_haircut"`
	VacancyBump float64 `yaml:"vacancy_bump" json:"vacancy_bump"`
	RateBump    float64 `yaml:"rate_bump" json:"rate_bump"`
}

// PassFail holds the minimum thresholds a deal must clear.
type PassFail struct {
	MinCashflow float64 `yaml:"min_cashflow" json:"min_cashflow"`
	MinDSCR     float64 `yaml:"min_dscr" json:"min_dscr"`
	MinCOC      float64 `yaml:"min_coc" json:"min_coc"`
}

// RentTier is the fallback rent formula for one city tier:
// rent = base + per_bedroom * bedrooms.
type RentTier struct {
	Base       float64 `yaml:"base" json:"base"`
	PerBedroom float64 `yaml:"per_bedroom" json:"per_bedroom"`
}

// InsuranceBand maps a loan-to-value ceiling to a mortgage-insurance premium
// rate applied to the principal. Bands must be sorted by MaxLTV ascending.
type InsuranceBand struct {
	MaxLTV     float64 `yaml:"max_ltv" json:"max_ltv"`
	PremiumPct float64 `yaml:"premium_pct" json:"premium_pct"`
}

// KeywordFilters controls the post-fetch listing filter.
type KeywordFilters struct {
	Include             []string `yaml:"include" json:"include"`
	Exclude             []string `yaml:"exclude" json:"exclude"`
	RequireIncludeMatch bool     `yaml:"require_include_match" json:"require_include_match"`
}

// DataSource holds connector tuning for the listing source.
type DataSource struct {
	RapidAPIHost string  `yaml:"rapidapi_host" json:"rapidapi_host"`
	DelaySeconds float64 `yaml:"delay_seconds" json:"delay_seconds"`
	MinPrice     float64 `yaml:"min_price" json:"min_price"`
}

// TierFor resolves a city to its rent tier. Cities not listed in any tier
// fall back to DefaultTier. Validate guarantees the returned tier exists
// in RentTiers.
func (c *Config) TierFor(city string) string {
	key := normalizeCity(city)
	for tier, cities := range c.Cities {
		for _, name := range cities {
			if normalizeCity(name) == key {
				return tier
			}
		}
	}
	return c.DefaultTier
}

// RentTierFor returns the rent formula parameters for a city.
func (c *Config) RentTierFor(city string) RentTier {
	return c.RentTiers[c.TierFor(city)]
}

// AllCities flattens the tier table into a single city list. When tiers is
// non-empty only those tiers are included.
func (c *Config) AllCities(tiers ...string) []string {
	names := tiers
	if len(names) == 0 {
		names = make([]string, 0, len(c.Cities))
		for tier := range c.Cities {
			names = append(names, tier)
		}
	}
	cities := make([]string, 0)
	for _, tier := range names {
		cities = append(cities, c.Cities[tier]...)
	}
	return cities
}

// InsurancePremiumPct returns the premium rate for a loan-to-value ratio,
// using the first band whose ceiling covers it. LTV beyond the last band
// returns the last band's rate.
func (c *Config) InsurancePremiumPct(ltv float64) float64 {
	if len(c.MortgageInsurance) == 0 {
		return 0
	}
	for _, band := range c.MortgageInsurance {
		if ltv <= band.MaxLTV {
			return band.PremiumPct
		}
	}
	return c.MortgageInsurance[len(c.MortgageInsurance)-1].PremiumPct
}
