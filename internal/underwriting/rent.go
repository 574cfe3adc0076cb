package underwriting

import (
	"github.com/wonny/realdeal/internal/contracts"
	"github.com/wonny/realdeal/internal/dealconfig"
)

// EstimateRent resolves the effective monthly rent for a listing.
// Explicit rent parsed from the description wins; otherwise the tiered
// formula base + per_bedroom * bedrooms for the listing's city tier.
// Always strictly positive: a zero-bedroom listing falls back to the
// tier base, and config validation guarantees base > 0.
func EstimateRent(signals contracts.ListingSignals, listing contracts.Listing, cfg *dealconfig.Config) float64 {
	if signals.HasExplicitRent() {
		return *signals.ExplicitRentMonthly
	}

	tier := cfg.RentTierFor(listing.City)
	bedrooms := listing.Bedrooms
	if bedrooms < 0 {
		bedrooms = 0
	}
	return tier.Base + tier.PerBedroom*float64(bedrooms)
}
