package config

import "github.com/gridflex/flexcore/core/market"

// MarketConfig carries the parameters the clearing component needs that
// aren't specific to any single trader: the legal price band and how
// residual power at the clearing price is shared among tied bids.
type MarketConfig struct {
	ScarcityPrice      float64 `json:"scarcity_price_eur_per_mwh"`
	MinimalPrice       float64 `json:"minimal_price_eur_per_mwh"`
	DistributionMethod string  `json:"distribution_method"`
}

// SetDefaults fills unset fields with AMIRIS's historical price band and
// first-come-first-serve tie-breaking.
func (c *MarketConfig) SetDefaults() {
	if c.ScarcityPrice == 0 && c.MinimalPrice == 0 {
		c.ScarcityPrice = market.DefaultPriceLimits.ScarcityPrice
		c.MinimalPrice = market.DefaultPriceLimits.MinimalPrice
	}
	if c.DistributionMethod == "" {
		c.DistributionMethod = "first_come_first_serve"
	}
}

// PriceLimits builds the market.PriceLimits this configuration describes.
func (c MarketConfig) PriceLimits() market.PriceLimits {
	return market.PriceLimits{ScarcityPrice: c.ScarcityPrice, MinimalPrice: c.MinimalPrice}
}

// Method resolves the configured distribution method name to its
// market.DistributionMethod value.
func (c MarketConfig) Method() (market.DistributionMethod, error) {
	switch c.DistributionMethod {
	case "first_come_first_serve", "":
		return market.FirstComeFirstServe, nil
	case "same_shares":
		return market.SameShares, nil
	case "randomize":
		return market.Randomize, nil
	default:
		return 0, unknownDistributionMethodError{c.DistributionMethod}
	}
}

type unknownDistributionMethodError struct{ name string }

func (e unknownDistributionMethodError) Error() string {
	return "config: unknown distribution method " + e.name
}
