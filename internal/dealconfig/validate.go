package dealconfig

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigError marks an invalid configuration. It is returned at load time
// and stops the program; bad config is never deferred to per-listing
// processing.
type ConfigError struct {
	Field   string
	Message string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every constraint the underwriting pipeline relies on.
func Validate(cfg *Config) error {
	if cfg.MaxPrice <= 0 {
		return ConfigError{"max_price", "must be > 0"}
	}

	// === Underwriting ===
	u := cfg.Underwriting
	rates := []struct {
		field string
		value float64
	}{
		{"underwriting.vacancy_rate", u.VacancyRate},
		{"underwriting.management_pct", u.ManagementPct},
		{"underwriting.maintenance_pct", u.MaintenancePct},
		{"underwriting.capex_pct", u.CapexPct},
		{"underwriting.property_tax_rate", u.PropertyTaxRate},
	}
	for _, r := range rates {
		if r.value < 0 || r.value >= 1 {
			return ConfigError{r.field, "must be in [0, 1)"}
		}
	}
	if u.AnnualInsurance < 0 {
		return ConfigError{"underwriting.annual_insurance", "must be >= 0"}
	}
	if u.AnnualUtilities < 0 {
		return ConfigError{"underwriting.annual_utilities", "must be >= 0"}
	}
	if u.AnnualSnowLawn < 0 {
		return ConfigError{"underwriting.annual_snow_lawn", "must be >= 0"}
	}
	if u.DownPaymentPct <= 0 || u.DownPaymentPct > 1 {
		return ConfigError{"underwriting.down_payment_pct", "must be in (0, 1]"}
	}
	if u.InterestRate < 0 {
		return ConfigError{"underwriting.interest_rate", "must be >= 0"}
	}
	if u.AmortizationYears <= 0 {
		return ConfigError{"underwriting.amortization_years", "must be > 0"}
	}
	if u.ClosingCosts < 0 {
		return ConfigError{"underwriting.closing_costs", "must be >= 0"}
	}

	// === Stress ===
	if cfg.Stress.RentHaircut < 0 || cfg.Stress.RentHaircut >= 1 {
		return ConfigError{"stress.rent_haircut", "must be in [0, 1)"}
	}
	if cfg.Stress.VacancyBump < 0 {
		return ConfigError{"stress.vacancy_bump", "must be >= 0"}
	}
	if cfg.Stress.RateBump < 0 {
		return ConfigError{"stress.rate_bump", "must be >= 0"}
	}
	if u.VacancyRate+cfg.Stress.VacancyBump >= 1 {
		return ConfigError{"stress.vacancy_bump", "vacancy_rate + vacancy_bump must be < 1"}
	}

	// === PassFail ===
	if cfg.PassFail.MinDSCR < 0 {
		return ConfigError{"pass_fail.min_dscr", "must be >= 0"}
	}

	// === Rent tiers ===
	if len(cfg.RentTiers) == 0 {
		return ConfigError{"rent_tiers", "required"}
	}
	for tier, params := range cfg.RentTiers {
		if params.Base <= 0 {
			return ConfigError{fmt.Sprintf("rent_tiers.%s.base", tier), "must be > 0"}
		}
		if params.PerBedroom < 0 {
			return ConfigError{fmt.Sprintf("rent_tiers.%s.per_bedroom", tier), "must be >= 0"}
		}
	}
	if cfg.DefaultTier == "" {
		return ConfigError{"default_tier", "required"}
	}
	if _, ok := cfg.RentTiers[cfg.DefaultTier]; !ok {
		return ConfigError{"default_tier", fmt.Sprintf("tier %q not defined in rent_tiers", cfg.DefaultTier)}
	}
	for tier := range cfg.Cities {
		if _, ok := cfg.RentTiers[tier]; !ok {
			return ConfigError{"cities", fmt.Sprintf("tier %q not defined in rent_tiers", tier)}
		}
	}

	// === Mortgage insurance ===
	if len(cfg.MortgageInsurance) == 0 {
		return ConfigError{"mortgage_insurance", "required"}
	}
	if !sort.SliceIsSorted(cfg.MortgageInsurance, func(i, j int) bool {
		return cfg.MortgageInsurance[i].MaxLTV < cfg.MortgageInsurance[j].MaxLTV
	}) {
		return ConfigError{"mortgage_insurance", "bands must be sorted by max_ltv ascending"}
	}
	for i, band := range cfg.MortgageInsurance {
		if band.MaxLTV <= 0 || band.MaxLTV > 1 {
			return ConfigError{fmt.Sprintf("mortgage_insurance[%d].max_ltv", i), "must be in (0, 1]"}
		}
		if band.PremiumPct < 0 {
			return ConfigError{fmt.Sprintf("mortgage_insurance[%d].premium_pct", i), "must be >= 0"}
		}
	}

	// === Data source ===
	if cfg.DataSource.DelaySeconds < 0 {
		return ConfigError{"data_source.delay_seconds", "must be >= 0"}
	}
	if cfg.DataSource.MinPrice < 0 {
		return ConfigError{"data_source.min_price", "must be >= 0"}
	}

	return nil
}

// Warning is a recommended-practice violation; logged, never fatal.
type Warning struct {
	Code    string
	Message string
}

// Warn checks soft constraints.
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if cfg.Underwriting.VacancyRate < 0.03 {
		warnings = append(warnings, Warning{
			Code:    "LOW_VACANCY",
			Message: "vacancy_rate < 3%: optimistic for small-market rentals",
		})
	}
	if cfg.Stress.RentHaircut == 0 && cfg.Stress.VacancyBump == 0 && cfg.Stress.RateBump == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_STRESS",
			Message: "all stress deltas are zero: stress scenario equals base case",
		})
	}
	if cfg.PassFail.MinCashflow <= 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_CASHFLOW_FLOOR",
			Message: "pass_fail.min_cashflow <= 0: break-even deals will pass",
		})
	}

	return warnings
}

// normalizeCity folds case and whitespace for city lookups.
func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
