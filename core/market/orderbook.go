package market

import (
	"math"
	"math/rand"
	"sort"
)

// OrderBookItem pairs a Bid with the cumulative power position it occupies
// once its book has been sorted, and the power actually awarded to it.
type OrderBookItem struct {
	Bid
	CumulatedPowerLower float64
	CumulatedPowerUpper float64
	AwardedPower        float64
}

// PriceLimits bounds the legal price domain and forces unconditional
// awards for the strategists that need them. Lifted from AMIRIS's global
// SCARCITY_PRICE_IN_EUR_PER_MWH / MINIMAL_PRICE_IN_EUR_PER_MWH constants
// into a config struct carried by the clearing component, per spec.md §9.
type PriceLimits struct {
	ScarcityPrice float64 `json:"scarcity_price_eur_per_mwh"`
	MinimalPrice  float64 `json:"minimal_price_eur_per_mwh"`
}

// DefaultPriceLimits bounds prices to [-500, +3000] EUR/MWh: a scarcity
// price of 3000 and a minimal price of -500.
var DefaultPriceLimits = PriceLimits{ScarcityPrice: 3000, MinimalPrice: -500}

// DistributionMethod controls how the residual power at the clearing
// price is shared among multiple price-setting bids.
type DistributionMethod int

const (
	FirstComeFirstServe DistributionMethod = iota
	SameShares
	Randomize
)

// UnsortedBook is an append-only order book for one side of the market at
// a single TimeStamp. Sort does not close it: bids added afterwards are
// kept and only a later Sort includes them. The type-level split from
// UnsortedBook to SortedBook is the redesign called for in spec.md §9,
// replacing a runtime "sorted" flag.
type UnsortedBook struct {
	side   Side
	items  []OrderBookItem
	limits PriceLimits
}

// NewSupplyBook returns an empty book for ascending-price supply bids.
func NewSupplyBook(limits PriceLimits) *UnsortedBook {
	return &UnsortedBook{side: Supply, limits: limits}
}

// NewDemandBook returns an empty book for descending-price demand bids.
func NewDemandBook(limits PriceLimits) *UnsortedBook {
	return &UnsortedBook{side: Demand, limits: limits}
}

// Side reports which side of the market this book accepts bids for.
func (b *UnsortedBook) Side() Side { return b.side }

// Len returns the number of real (non-virtual) bids added so far.
func (b *UnsortedBook) Len() int { return len(b.items) }

// AddBid appends bid to the book. The bid's side must match the book's
// side and its price must fall within the book's PriceLimits.
func (b *UnsortedBook) AddBid(bid Bid) error {
	if err := bid.Validate(); err != nil {
		return err
	}
	if bid.Side != b.side {
		if b.side == Supply {
			return ErrNegativeDemandPower // wrong-side bid, reuse taxonomy sentinel closest in spirit
		}
		return ErrNegativeSupplyPower
	}
	if bid.PriceInEURperMWH > b.limits.ScarcityPrice || bid.PriceInEURperMWH < b.limits.MinimalPrice {
		return ErrPriceOutOfBand
	}
	b.items = append(b.items, OrderBookItem{Bid: bid})
	return nil
}

// AddBids appends every bid in bids, stopping at the first error.
func (b *UnsortedBook) AddBids(bids []Bid) error {
	for _, bid := range bids {
		if err := b.AddBid(bid); err != nil {
			return err
		}
	}
	return nil
}

// virtualTailBid returns the zero-power bid at the extreme legal price
// that guarantees the supply and demand cumulative-power curves cross.
func (b *UnsortedBook) virtualTailBid() Bid {
	if b.side == Supply {
		return Bid{EnergyInMWH: 0, PriceInEURperMWH: b.limits.ScarcityPrice, Side: Supply}
	}
	return Bid{EnergyInMWH: 0, PriceInEURperMWH: b.limits.MinimalPrice, Side: Demand}
}

// Sort closes the book: it appends the virtual tail bid, orders items by
// price (ascending for supply, descending for demand), assigns cumulative
// power positions, and returns the resulting SortedBook. The receiver is
// left untouched so a fresh Sort() call always reflects the bids added so
// far; callers typically discard the UnsortedBook after this call.
func (b *UnsortedBook) Sort() *SortedBook {
	items := make([]OrderBookItem, len(b.items), len(b.items)+1)
	copy(items, b.items)
	items = append(items, OrderBookItem{Bid: b.virtualTailBid()})

	if b.side == Supply {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PriceInEURperMWH < items[j].PriceInEURperMWH
		})
	} else {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].PriceInEURperMWH > items[j].PriceInEURperMWH
		})
	}

	cumulated := 0.0
	for i := range items {
		items[i].CumulatedPowerLower = cumulated
		cumulated += items[i].EnergyInMWH
		items[i].CumulatedPowerUpper = cumulated
	}

	return &SortedBook{
		side:                   b.side,
		items:                  items,
		limits:                 b.limits,
		awardedPrice:           math.NaN(),
		awardedCumulativePower: math.NaN(),
	}
}

// SortedBook is a closed order book: no further bids may be added. It
// offers cumulative-power queries and, once the market has cleared,
// award-update and per-trader accounting queries.
type SortedBook struct {
	side                   Side
	items                  []OrderBookItem
	limits                 PriceLimits
	awardedPrice           float64
	awardedCumulativePower float64
}

// Items returns the sorted items, including the virtual tail bid.
func (s *SortedBook) Items() []OrderBookItem { return s.items }

// Side reports which side of the market this book represents.
func (s *SortedBook) Side() Side { return s.side }

// AwardedPrice returns the uniform clearing price, or NaN before clearing.
func (s *SortedBook) AwardedPrice() float64 { return s.awardedPrice }

// AwardedCumulativePower returns the total awarded power, or NaN before clearing.
func (s *SortedBook) AwardedCumulativePower() float64 { return s.awardedCumulativePower }

// Clear discards this book's contents and returns a fresh UnsortedBook for
// the same side and price limits, allowing the market agent to reuse the
// allocation for the next clearing step.
func (s *SortedBook) Clear() *UnsortedBook {
	return &UnsortedBook{side: s.side, limits: s.limits}
}

// updateAwardedPower fills in AwardedPower for every item given the
// clearing outcome, per spec.md §4.2 step 3-4. rng is only consulted for
// DistributionMethod == Randomize and may be nil otherwise.
func (s *SortedBook) updateAwardedPower(totalAwardedPower, awardedPrice float64, method DistributionMethod, rng *rand.Rand) {
	s.awardedPrice = awardedPrice
	s.awardedCumulativePower = totalAwardedPower

	var priceSetting []int
	for i := range s.items {
		it := &s.items[i]
		if it.PriceInEURperMWH == awardedPrice {
			priceSetting = append(priceSetting, i)
			continue
		}
		if it.CumulatedPowerUpper <= totalAwardedPower {
			it.AwardedPower = it.EnergyInMWH
		} else {
			it.AwardedPower = 0
		}
	}

	var group []int
	for _, idx := range priceSetting {
		if s.items[idx].EnergyInMWH <= 0 {
			s.items[idx].AwardedPower = 0
			continue
		}
		group = append(group, idx)
	}
	if len(group) == 0 {
		return
	}

	fullyAwarded := 0.0
	for i := range s.items {
		if s.items[i].PriceInEURperMWH != awardedPrice {
			fullyAwarded += s.items[i].AwardedPower
		}
	}
	residual := totalAwardedPower - fullyAwarded

	switch method {
	case Randomize:
		shuffled := append([]int(nil), group...)
		if rng != nil {
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		}
		awardFirstComeFirstServe(s.items, shuffled, residual)
	case SameShares:
		sum := 0.0
		for _, idx := range group {
			sum += s.items[idx].EnergyInMWH
		}
		if sum <= 0 {
			return
		}
		share := residual / sum
		for _, idx := range group {
			s.items[idx].AwardedPower = s.items[idx].EnergyInMWH * share
		}
	default: // FirstComeFirstServe
		awardFirstComeFirstServe(s.items, group, residual)
	}
}

func awardFirstComeFirstServe(items []OrderBookItem, order []int, available float64) {
	for _, idx := range order {
		award := math.Min(items[idx].EnergyInMWH, available)
		if award < 0 {
			award = 0
		}
		items[idx].AwardedPower = award
		available -= award
	}
}

// ItemsByTrader returns the items belonging to traderID, in book order.
func (s *SortedBook) ItemsByTrader(traderID string) []OrderBookItem {
	var out []OrderBookItem
	for _, it := range s.items {
		if it.TraderID == traderID {
			out = append(out, it)
		}
	}
	return out
}

// TraderPower sums the awarded power across all items belonging to traderID.
func (s *SortedBook) TraderPower(traderID string) float64 {
	total := 0.0
	for _, it := range s.items {
		if it.TraderID == traderID {
			total += it.AwardedPower
		}
	}
	return total
}
