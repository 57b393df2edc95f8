package sensitivity

import (
	"math"

	"github.com/gridflex/flexcore/core/market"
)

// PriceSensitivity values an additional unit of power at the offer price
// of the order-book item that would become marginal for that unit,
// letting a Strategist anticipate its own price impact.
type PriceSensitivity struct {
	base
}

// NewPriceSensitivity returns a Sensitivity ranking items by offer price.
func NewPriceSensitivity() *PriceSensitivity {
	return &PriceSensitivity{base: newBase(valuation{
		less:          func(a, b Item) bool { return a.OfferPrice < b.OfferPrice },
		monetaryValue: func(item Item) float64 { return item.Power * item.OfferPrice },
	})}
}

// UpdatePriceForecast is a no-op: PriceSensitivity derives its values
// entirely from the cleared order books, it never needs a forecast.
func (p *PriceSensitivity) UpdatePriceForecast(float64) {}

// CostSensitivity values an additional unit of power at the marginal
// production or curtailment cost of the item that would serve it,
// letting a Strategist minimize system cost rather than its own outlay.
type CostSensitivity struct {
	base
}

// NewCostSensitivity returns a Sensitivity ranking items by marginal cost.
func NewCostSensitivity() *CostSensitivity {
	return &CostSensitivity{base: newBase(valuation{
		less:          func(a, b Item) bool { return a.MarginalCost < b.MarginalCost },
		monetaryValue: func(item Item) float64 { return item.Power * item.MarginalCost },
	})}
}

// UpdatePriceForecast is a no-op: CostSensitivity derives its values
// entirely from the cleared order books.
func (c *CostSensitivity) UpdatePriceForecast(float64) {}

// PriceNoSensitivity ignores order-book impact entirely and instead
// reports a single, externally supplied price forecast for every power
// step. It grounds "price taker" strategists that assume their own
// dispatch decisions do not move the market.
type PriceNoSensitivity struct {
	base
	priceForecast float64
}

// NewPriceNoSensitivity returns a Sensitivity that always reports the
// last forecast set via UpdatePriceForecast, ignoring order-book content.
func NewPriceNoSensitivity() *PriceNoSensitivity {
	return &PriceNoSensitivity{
		base:          newBase(valuation{}),
		priceForecast: math.NaN(),
	}
}

// UpdateSensitivities is a no-op: this flavor never inspects order books.
func (p *PriceNoSensitivity) UpdateSensitivities(_, _ *market.SortedBook) {}

// UpdatePriceForecast stores the forecast value to be reported.
func (p *PriceNoSensitivity) UpdatePriceForecast(electricityPriceForecast float64) {
	p.priceForecast = electricityPriceForecast
}

// PriceForecast returns the last stored forecast, or NaN if none was set.
func (p *PriceNoSensitivity) PriceForecast() float64 { return p.priceForecast }

// ValuesInSteps returns the forecast price for every non-zero power step.
func (p *PriceNoSensitivity) ValuesInSteps(numberOfTransitionSteps int) []float64 {
	values := make([]float64, 2*numberOfTransitionSteps+1)
	for i := range values {
		if i == numberOfTransitionSteps {
			values[i] = 0
			continue
		}
		values[i] = p.priceForecast
	}
	return values
}

// IsEmpty reports whether a forecast has been set.
func (p *PriceNoSensitivity) IsEmpty() bool { return math.IsNaN(p.priceForecast) }

// MarginalValueAt returns the flat forecast price regardless of
// direction or magnitude, since a price taker assumes no order-book
// impact at all.
func (p *PriceNoSensitivity) MarginalValueAt(externalEnergyDeltaInMW float64) float64 {
	if externalEnergyDeltaInMW == 0 {
		return math.NaN()
	}
	return p.priceForecast
}
