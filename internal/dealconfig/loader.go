package dealconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the strategy YAML, rejecting unknown fields so typos fail
// immediately, and validates eagerly. Returns the raw bytes alongside the
// parsed config for run snapshots.
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Hash generates a SHA256 hash of the config via canonical JSON. Struct
// field order keeps the hash reproducible across runs.
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Default returns a config with conservative Ontario small-market defaults.
// Load decodes on top of it, so omitted sections keep these values.
func Default() *Config {
	return &Config{
		MaxPrice: 550_000,
		Province: "ON",
		Underwriting: Underwriting{
			VacancyRate:       0.05,
			ManagementPct:     0.08,
			MaintenancePct:    0.05,
			CapexPct:          0.05,
			PropertyTaxRate:   0.011,
			AnnualInsurance:   1_800,
			AnnualUtilities:   0,
			AnnualSnowLawn:    900,
			DownPaymentPct:    0.20,
			InterestRate:      0.05,
			AmortizationYears: 25,
			ClosingCosts:      8_000,
		},
		Stress: Stress{
			RentHaircut: 0.07,
			VacancyBump: 0.02,
			RateBump:    0.01,
		},
		PassFail: PassFail{
			MinCashflow: 150,
			MinDSCR:     1.15,
			MinCOC:      0.08,
		},
		RentTiers: map[string]RentTier{
			"tier_1":       {Base: 1_400, PerBedroom: 900},
			"tier_2":       {Base: 1_200, PerBedroom: 850},
			"tier_3":       {Base: 1_000, PerBedroom: 750},
			"bruce_county": {Base: 1_100, PerBedroom: 800},
			"alberta":      {Base: 1_150, PerBedroom: 800},
		},
		DefaultTier: "tier_2",
		Cities: map[string][]string{
			"tier_1": {"London", "Hamilton", "Oshawa", "St. Catharines", "Kingston"},
			"tier_2": {
				"Windsor", "Sarnia", "Sudbury", "Thunder Bay", "Niagara Falls",
				"Brantford", "Peterborough", "Belleville", "Welland", "Cornwall",
			},
			"tier_3": {
				"Chatham-Kent", "North Bay", "Timmins", "Sault Ste. Marie",
				"Elliot Lake", "Kapuskasing", "Cochrane", "Pembroke",
				"Owen Sound", "Stratford", "Leamington", "Amherstburg",
			},
			"bruce_county": {"Kincardine", "Walkerton", "Hanover", "Port Elgin", "Southampton"},
			"alberta":      {"Lethbridge", "Medicine Hat", "Red Deer"},
		},
		// CMHC-like illustrative premiums by LTV band; jurisdiction policy,
		// override in YAML when rates change.
		MortgageInsurance: []InsuranceBand{
			{MaxLTV: 0.80, PremiumPct: 0.0},
			{MaxLTV: 0.85, PremiumPct: 0.028},
			{MaxLTV: 0.90, PremiumPct: 0.031},
			{MaxLTV: 0.95, PremiumPct: 0.040},
		},
		KeywordFilters: KeywordFilters{
			Include: []string{
				"duplex", "triplex", "fourplex", "legal", "suite",
				"basement apartment", "income", "units",
			},
			Exclude:             []string{"condo fee over", "land lease", "co-op", "mobile home"},
			RequireIncludeMatch: true,
		},
		DataSource: DataSource{
			RapidAPIHost: "realtor-ca-scraper-api.p.rapidapi.com",
			DelaySeconds: 2.0,
			MinPrice:     20_000,
		},
	}
}
