package market

import "math/rand"

// ClearingResult is the outcome of one uniform-price clearing: both sorted
// books with their per-item awards filled in, plus the scalar price and
// power that a Trader reports upstream. Mirrors AwardData in
// DayAheadMarketSingleZone.sendAwardsToTraders, generalized from a single
// zone's per-trader bundle to the whole-book result the market keeps.
type ClearingResult struct {
	Supply                 *SortedBook
	Demand                 *SortedBook
	AwardedPrice           float64
	AwardedCumulativePower float64
}

// Clear runs one uniform-price merit-order clearing of supply against
// demand and returns the sorted, awarded books plus the scalar clearing
// price and power. rng is only used for DistributionMethod == Randomize.
//
// Failure modes: an empty supply book (no bids besides the virtual tail)
// clears at the scarcity price with zero awarded power; an empty demand
// book clears at the minimal price with zero awarded power. Both books
// carry a virtual tail bid so a crossing always exists once at least one
// side has a real bid.
func Clear(supply, demand *UnsortedBook, method DistributionMethod, rng *rand.Rand) (*ClearingResult, error) {
	if supply.Side() != Supply {
		return nil, ErrNegativeSupplyPower
	}
	if demand.Side() != Demand {
		return nil, ErrNegativeDemandPower
	}

	supplyBook := supply.Sort()
	demandBook := demand.Sort()

	price, power := findClearingPoint(supplyBook.items, demandBook.items)
	if supply.Len() == 0 {
		price, power = supply.limits.ScarcityPrice, 0
	} else if demand.Len() == 0 {
		price, power = demand.limits.MinimalPrice, 0
	}

	supplyBook.updateAwardedPower(power, price, method, rng)
	demandBook.updateAwardedPower(power, price, method, rng)

	return &ClearingResult{
		Supply:                 supplyBook,
		Demand:                 demandBook,
		AwardedPrice:           price,
		AwardedCumulativePower: power,
	}, nil
}

// findClearingPoint locates the smallest price at which cumulative supply
// meets or exceeds cumulative demand, per spec.md §4.2: sweep the union of
// both books' bid prices in ascending order and evaluate each side's
// cumulative-power step function at that price.
func findClearingPoint(supplyAsc, demandDesc []OrderBookItem) (price, power float64) {
	candidates := candidatePrices(supplyAsc, demandDesc)
	for _, p := range candidates {
		s := cumulativeAtOrBelow(supplyAsc, p)
		d := cumulativeAtOrAbove(demandDesc, p)
		if s >= d {
			return p, d
		}
	}
	// Both books close with a zero-power virtual tail at the extreme legal
	// price, so a crossing always exists among the candidates; this path
	// is unreachable in practice and only guards against an empty union.
	return 0, 0
}

func candidatePrices(supplyAsc, demandDesc []OrderBookItem) []float64 {
	seen := make(map[float64]struct{}, len(supplyAsc)+len(demandDesc))
	var prices []float64
	add := func(p float64) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		prices = append(prices, p)
	}
	for _, it := range supplyAsc {
		add(it.PriceInEURperMWH)
	}
	for _, it := range demandDesc {
		add(it.PriceInEURperMWH)
	}
	sortFloats(prices)
	return prices
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// cumulativeAtOrBelow returns the cumulative power of items (sorted
// ascending by price) whose price does not exceed p.
func cumulativeAtOrBelow(items []OrderBookItem, p float64) float64 {
	result := 0.0
	for _, it := range items {
		if it.PriceInEURperMWH > p {
			break
		}
		result = it.CumulatedPowerUpper
	}
	return result
}

// cumulativeAtOrAbove returns the cumulative power of items (sorted
// descending by price) whose price is at least p.
func cumulativeAtOrAbove(items []OrderBookItem, p float64) float64 {
	result := 0.0
	for _, it := range items {
		if it.PriceInEURperMWH < p {
			break
		}
		result = it.CumulatedPowerUpper
	}
	return result
}
