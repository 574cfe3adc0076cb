package dealconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidateFailFast(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "negative vacancy rate",
			mutate:    func(c *Config) { c.Underwriting.VacancyRate = -0.01 },
			wantField: "underwriting.vacancy_rate",
		},
		{
			name:      "vacancy rate at one",
			mutate:    func(c *Config) { c.Underwriting.VacancyRate = 1.0 },
			wantField: "underwriting.vacancy_rate",
		},
		{
			name:      "zero down payment",
			mutate:    func(c *Config) { c.Underwriting.DownPaymentPct = 0 },
			wantField: "underwriting.down_payment_pct",
		},
		{
			name:      "down payment above one",
			mutate:    func(c *Config) { c.Underwriting.DownPaymentPct = 1.5 },
			wantField: "underwriting.down_payment_pct",
		},
		{
			name:      "zero amortization",
			mutate:    func(c *Config) { c.Underwriting.AmortizationYears = 0 },
			wantField: "underwriting.amortization_years",
		},
		{
			name:      "rent haircut at one",
			mutate:    func(c *Config) { c.Stress.RentHaircut = 1.0 },
			wantField: "stress.rent_haircut",
		},
		{
			name: "vacancy plus bump reaches one",
			mutate: func(c *Config) {
				c.Underwriting.VacancyRate = 0.5
				c.Stress.VacancyBump = 0.5
			},
			wantField: "stress.vacancy_bump",
		},
		{
			name:      "tier with zero base",
			mutate:    func(c *Config) { c.RentTiers["tier_1"] = RentTier{Base: 0, PerBedroom: 900} },
			wantField: "rent_tiers.tier_1.base",
		},
		{
			name:      "default tier missing from rent_tiers",
			mutate:    func(c *Config) { c.DefaultTier = "no_such_tier" },
			wantField: "default_tier",
		},
		{
			name:      "cities referencing unknown tier",
			mutate:    func(c *Config) { c.Cities["ghost_tier"] = []string{"Nowhere"} },
			wantField: "cities",
		},
		{
			name: "unsorted insurance bands",
			mutate: func(c *Config) {
				c.MortgageInsurance = []InsuranceBand{
					{MaxLTV: 0.90, PremiumPct: 0.031},
					{MaxLTV: 0.80, PremiumPct: 0},
				}
			},
			wantField: "mortgage_insurance",
		},
		{
			name:      "empty rent tiers",
			mutate:    func(c *Config) { c.RentTiers = nil },
			wantField: "rent_tiers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var cerr ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.wantField, cerr.Field)
		})
	}
}

func TestTierFor(t *testing.T) {
	cfg := Default()

	tests := []struct {
		city string
		want string
	}{
		{"Hamilton", "tier_1"},
		{"hamilton", "tier_1"},
		{"  Hamilton  ", "tier_1"},
		{"Windsor", "tier_2"},
		{"Kincardine", "bruce_county"},
		{"Lethbridge", "alberta"},
		{"Nowhereville", "tier_2"}, // default tier
		{"", "tier_2"},
	}

	for _, tt := range tests {
		t.Run(tt.city, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.TierFor(tt.city))
		})
	}
}

func TestRentTierForAlwaysResolvable(t *testing.T) {
	cfg := Default()

	tier := cfg.RentTierFor("some city nobody mapped")
	assert.Greater(t, tier.Base, 0.0)
}

func TestAllCities(t *testing.T) {
	cfg := Default()

	all := cfg.AllCities()
	assert.Contains(t, all, "Hamilton")
	assert.Contains(t, all, "Lethbridge")

	onlyBruce := cfg.AllCities("bruce_county")
	assert.Equal(t, cfg.Cities["bruce_county"], onlyBruce)
}

func TestInsurancePremiumPct(t *testing.T) {
	cfg := Default()

	tests := []struct {
		ltv  float64
		want float64
	}{
		{0.75, 0.0},
		{0.80, 0.0},
		{0.82, 0.028},
		{0.85, 0.028},
		{0.90, 0.031},
		{0.95, 0.040},
		{0.99, 0.040}, // beyond last band uses last band's rate
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, cfg.InsurancePremiumPct(tt.ltv), 1e-9, "ltv %.2f", tt.ltv)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deal.yaml")
	yaml := `
max_price: 400000
underwriting:
  interest_rate: 0.045
pass_fail:
  min_cashflow: 200
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, raw, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	// Overridden values take effect, omitted sections keep defaults.
	assert.Equal(t, 400_000.0, cfg.MaxPrice)
	assert.Equal(t, 0.045, cfg.Underwriting.InterestRate)
	assert.Equal(t, 200.0, cfg.PassFail.MinCashflow)
	assert.Equal(t, 0.05, cfg.Underwriting.VacancyRate)
	assert.Equal(t, "tier_2", cfg.DefaultTier)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deal.yaml")
	yaml := `
max_price: 400000
underwritting:
  interest_rate: 0.045
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deal.yaml")
	yaml := `
underwriting:
  down_payment_pct: 0
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)

	var cerr ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "underwriting.down_payment_pct", cerr.Field)
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestHashStable(t *testing.T) {
	first, err := Hash(Default())
	require.NoError(t, err)
	second, err := Hash(Default())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	changed := Default()
	changed.MaxPrice = 1
	third, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestWarn(t *testing.T) {
	cfg := Default()
	assert.Empty(t, Warn(cfg))

	cfg.Underwriting.VacancyRate = 0.01
	cfg.Stress = Stress{}
	cfg.PassFail.MinCashflow = 0

	warnings := Warn(cfg)
	require.Len(t, warnings, 3)

	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = w.Code
	}
	assert.Contains(t, codes, "LOW_VACANCY")
	assert.Contains(t, codes, "NO_STRESS")
	assert.Contains(t, codes, "NO_CASHFLOW_FLOOR")
}
