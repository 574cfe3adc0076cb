package underwriting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/realdeal/internal/contracts"
)

func TestExtractSignalsEmptyDescription(t *testing.T) {
	signals := ExtractSignals("")

	assert.Nil(t, signals.ExplicitRentMonthly)
	assert.Nil(t, signals.UnitCountHint)
	assert.Nil(t, signals.CondoFeeMonthly)
	assert.False(t, signals.MultiUnitSignal)
	assert.False(t, signals.CondoSignal)
	assert.Equal(t, contracts.UtilitiesUnknown, signals.UtilitiesStatus)
	assert.Equal(t, contracts.SuiteUnknown, signals.LegalSuiteStatus)
}

func TestExtractSignalsMultiUnitRentSum(t *testing.T) {
	signals := ExtractSignals("Upstairs $1,800/mo, basement $1,600/mo")

	require.NotNil(t, signals.ExplicitRentMonthly)
	assert.Equal(t, 3400.0, *signals.ExplicitRentMonthly)

	require.NotNil(t, signals.UnitCountHint)
	assert.Equal(t, 2, *signals.UnitCountHint)

	assert.True(t, signals.MultiUnitSignal)
	assert.False(t, signals.CondoSignal)
}

func TestExtractSignalsSingleRent(t *testing.T) {
	signals := ExtractSignals("Currently tenanted, rent $2,150 per month")

	require.NotNil(t, signals.ExplicitRentMonthly)
	assert.Equal(t, 2150.0, *signals.ExplicitRentMonthly)
	assert.Nil(t, signals.UnitCountHint)
}

func TestExtractSignalsTotalBeatsSum(t *testing.T) {
	signals := ExtractSignals(
		"Duplex with two units. Each unit rents around $1,500, total rent $3,100 monthly")

	require.NotNil(t, signals.ExplicitRentMonthly)
	assert.Equal(t, 3100.0, *signals.ExplicitRentMonthly)

	require.NotNil(t, signals.UnitCountHint)
	assert.Equal(t, 2, *signals.UnitCountHint)
}

func TestExtractSignalsExclusionTokens(t *testing.T) {
	// The deposit amount sits far enough from the rent mention that the
	// context windows do not overlap.
	signals := ExtractSignals(
		"Tenant pays rent of $2,000 monthly. Furnace replaced in 2020 and the roof redone last year. " +
			"A security deposit of $2,000 is collected on signing")

	require.NotNil(t, signals.ExplicitRentMonthly)
	assert.Equal(t, 2000.0, *signals.ExplicitRentMonthly)
}

func TestExtractSignalsRentSanityRange(t *testing.T) {
	tests := []struct {
		name string
		desc string
	}{
		{"below minimum", "parking spot rents for $300/mo"},
		{"above maximum", "commercial unit rents for $20,000 monthly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ExtractSignals(tt.desc)
			assert.Nil(t, signals.ExplicitRentMonthly)
		})
	}
}

func TestExtractSignalsUnitCountKeywords(t *testing.T) {
	tests := []struct {
		desc string
		want int
	}{
		{"solid brick duplex downtown", 2},
		{"legal triplex with coin laundry", 3},
		{"well maintained fourplex", 4},
		{"building has 3 units all tenanted", 3},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			signals := ExtractSignals(tt.desc)
			require.NotNil(t, signals.UnitCountHint)
			assert.Equal(t, tt.want, *signals.UnitCountHint)
			assert.True(t, signals.MultiUnitSignal)
		})
	}
}

func TestExtractSignalsCondoFee(t *testing.T) {
	signals := ExtractSignals("Bright corner condo, condo fees: $450 per month")

	assert.True(t, signals.CondoSignal)
	require.NotNil(t, signals.CondoFeeMonthly)
	assert.Equal(t, 450.0, *signals.CondoFeeMonthly)
}

func TestExtractSignalsCondoFeeOutOfRange(t *testing.T) {
	signals := ExtractSignals("Condo fees $5,000 covers everything")

	assert.True(t, signals.CondoSignal)
	assert.Nil(t, signals.CondoFeeMonthly)
}

func TestExtractSignalsCondoKeywordWithoutFee(t *testing.T) {
	signals := ExtractSignals("Spacious condominium in the core")

	assert.True(t, signals.CondoSignal)
	assert.Nil(t, signals.CondoFeeMonthly)
}

func TestExtractSignalsUtilities(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want contracts.UtilitiesStatus
	}{
		{"included", "all inclusive, utilities included in rent", contracts.UtilitiesIncluded},
		{"tenant pays", "tenant pays hydro and gas", contracts.UtilitiesTenantPays},
		{"contradictory stays unknown", "utilities included upstairs, tenant pays hydro below", contracts.UtilitiesUnknown},
		{"silent stays unknown", "beautiful backyard with mature trees", contracts.UtilitiesUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ExtractSignals(tt.desc)
			assert.Equal(t, tt.want, signals.UtilitiesStatus)
		})
	}
}

func TestExtractSignalsLegalSuite(t *testing.T) {
	tests := []struct {
		name string
		desc string
		want contracts.LegalSuiteStatus
	}{
		{"legal suite", "legal basement suite with separate entrance", contracts.SuiteLegal},
		{"registered apartment", "registered second apartment upstairs", contracts.SuiteLegal},
		{"non-conforming", "non-conforming basement apartment", contracts.SuiteNonConforming},
		{"negative beats positive", "basement suite, not legal", contracts.SuiteNonConforming},
		{"no suite context", "legal description: lot 5 plan 30", contracts.SuiteUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := ExtractSignals(tt.desc)
			assert.Equal(t, tt.want, signals.LegalSuiteStatus)
		})
	}
}

func TestExtractSignalsDeterministic(t *testing.T) {
	desc := "Legal duplex, upstairs $1,800/mo, basement $1,600/mo, tenant pays hydro"

	first := ExtractSignals(desc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractSignals(desc))
	}
}
