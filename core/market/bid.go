// Package market implements the day-ahead merit-order order book and its
// uniform-price clearing, mirroring agents.markets.meritOrder.books in the
// original model: bids are collected per side, closed into a sorted book,
// and cleared against the opposite side's book for a single hour.
package market

// Side identifies which side of the market a Bid belongs to.
type Side int

const (
	Supply Side = iota
	Demand
)

func (s Side) String() string {
	if s == Supply {
		return "supply"
	}
	return "demand"
}

// Bid is a single offer to sell (Supply) or buy (Demand) energy for one
// hour. EnergyInMWH is always non-negative; the Side encodes direction.
type Bid struct {
	EnergyInMWH             float64
	PriceInEURperMWH        float64
	MarginalCostInEURperMWH float64
	Side                    Side
	TraderID                string
}

// Validate rejects bids that violate the invariants of §3: negative
// power is illegal regardless of side.
func (b Bid) Validate() error {
	if b.EnergyInMWH < 0 {
		if b.Side == Supply {
			return ErrNegativeSupplyPower
		}
		return ErrNegativeDemandPower
	}
	return nil
}
