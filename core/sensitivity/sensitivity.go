// Package sensitivity derives how a cleared merit-order book would react
// to a hypothetical extra unit of charging or discharging power, letting a
// Strategist value flexibility without re-clearing the market. Grounded on
// agents.markets.meritOrder.sensitivities.MeritOrderSensitivity in the
// original model.
package sensitivity

import (
	"math"
	"sort"

	"github.com/gridflex/flexcore/core/market"
)

// Item is one order-book entry restated for sensitivity analysis: its
// power block, the price it was offered at, its marginal cost, and the
// cumulative power position it occupies once ranked by a Sensitivity's
// ordering.
type Item struct {
	Power               float64
	OfferPrice          float64
	MarginalCost        float64
	CumulatedLowerPower float64
	CumulatedUpperPower float64
	MonetaryOffset      float64
}

// Sensitivity is the capability every strategist depends on to value an
// additional unit of charging or discharging power without re-running the
// market clearing. Concrete implementations differ only in how they rank
// order-book items and how they price a unit of power, which is why the
// interface itself carries no assumption about that ranking.
type Sensitivity interface {
	UpdatePowers(maxChargePowerInMW, maxDischargePowerInMW float64)
	UpdateSensitivities(supply, demand *market.SortedBook)
	ValuesInSteps(numberOfTransitionSteps int) []float64
	// MarginalValueAt returns the per-unit value of the order-book item
	// that would actually become marginal for an external energy delta of
	// externalEnergyDeltaInMW (positive charging, negative discharging),
	// letting a strategist place its bid at that award boundary instead of
	// a hard price limit.
	MarginalValueAt(externalEnergyDeltaInMW float64) float64
	UpdatePriceForecast(electricityPriceForecast float64)
	IsEmpty() bool
}

// valuation supplies the two policy decisions that distinguish one
// Sensitivity flavor from another, replacing the original's abstract
// methods on MeritOrderSensitivity with plain injected functions.
type valuation struct {
	less          func(a, b Item) bool
	monetaryValue func(item Item) float64
}

// base implements the ranking, cumulative-power bookkeeping and stepwise
// query logic shared by every Sensitivity flavor.
type base struct {
	externalChargingPowerInMW    float64
	externalDischargingPowerInMW float64
	chargingItems                []Item
	dischargingItems             []Item
	policy                       valuation
}

func newBase(policy valuation) base {
	return base{policy: policy}
}

func (b *base) UpdatePowers(maxChargePowerInMW, maxDischargePowerInMW float64) {
	b.externalChargingPowerInMW = maxChargePowerInMW
	b.externalDischargingPowerInMW = maxDischargePowerInMW
}

func (b *base) IsEmpty() bool {
	return len(b.chargingItems) == 0 && len(b.dischargingItems) == 0
}

// extractItems drains a sorted book's blocks (skipping zero-power items,
// including the virtual tail) into charging/discharging candidates: an
// item's not-awarded power is a charging opportunity and its awarded
// power a discharging opportunity for supply, and the reverse for demand.
func (b *base) extractItems(book *market.SortedBook, isSupply bool) {
	for _, it := range book.Items() {
		if it.EnergyInMWH <= 0 {
			continue
		}
		notAwarded := it.EnergyInMWH - it.AwardedPower
		awarded := it.AwardedPower
		item := Item{OfferPrice: it.PriceInEURperMWH, MarginalCost: it.MarginalCostInEURperMWH}

		if isSupply {
			if notAwarded > 0 {
				add := item
				add.Power = notAwarded
				b.chargingItems = append(b.chargingItems, add)
			}
			if awarded > 0 {
				add := item
				add.Power = awarded
				b.dischargingItems = append(b.dischargingItems, add)
			}
		} else {
			if notAwarded > 0 {
				add := item
				add.Power = notAwarded
				b.dischargingItems = append(b.dischargingItems, add)
			}
			if awarded > 0 {
				add := item
				add.Power = awarded
				b.chargingItems = append(b.chargingItems, add)
			}
		}
	}
}

func (b *base) UpdateSensitivities(supply, demand *market.SortedBook) {
	b.chargingItems = b.chargingItems[:0]
	b.dischargingItems = b.dischargingItems[:0]

	if supply != nil {
		b.extractItems(supply, true)
	}
	if demand != nil {
		b.extractItems(demand, false)
	}

	sort.SliceStable(b.chargingItems, func(i, j int) bool { return b.policy.less(b.chargingItems[i], b.chargingItems[j]) })
	sort.SliceStable(b.dischargingItems, func(i, j int) bool { return b.policy.less(b.dischargingItems[j], b.dischargingItems[i]) })

	b.setCumulativeValues(b.chargingItems)
	b.setCumulativeValues(b.dischargingItems)

	b.chargingItems = filterByLowerPower(b.chargingItems, b.externalChargingPowerInMW)
	b.dischargingItems = filterByLowerPower(b.dischargingItems, b.externalDischargingPowerInMW)
}

func filterByLowerPower(items []Item, limit float64) []Item {
	out := items[:0]
	for _, it := range items {
		if it.CumulatedLowerPower <= limit {
			out = append(out, it)
		}
	}
	return out
}

func (b *base) setCumulativeValues(items []Item) {
	cumulated := 0.0
	offset := 0.0
	for i := range items {
		items[i].CumulatedLowerPower = cumulated
		items[i].MonetaryOffset = offset
		cumulated += items[i].Power
		items[i].CumulatedUpperPower = cumulated
		offset += b.policy.monetaryValue(items[i])
	}
}

// ValuesInSteps returns the sensitivity value in 2*numberOfTransitionSteps+1
// equally spaced power steps: index 0 is maximum discharging power, index
// numberOfTransitionSteps is zero power, and the last index is maximum
// charging power. Each value is the power-weighted average monetary value
// of every item up to that cumulative power, interpolating within the
// item straddling it, so it represents the true average price/cost of
// dispatching that much power rather than one item's own marginal price.
// A step beyond the last known order-book item is NaN.
func (b *base) ValuesInSteps(numberOfTransitionSteps int) []float64 {
	values := make([]float64, 2*numberOfTransitionSteps+1)
	values[numberOfTransitionSteps] = 0.0

	if numberOfTransitionSteps <= 0 {
		return values
	}

	chargingStep := b.externalChargingPowerInMW / float64(numberOfTransitionSteps)
	for step := 1; step <= numberOfTransitionSteps; step++ {
		power := chargingStep * float64(step)
		values[numberOfTransitionSteps+step] = b.averageValueUpToPower(b.chargingItems, power)
	}

	dischargingStep := b.externalDischargingPowerInMW / float64(numberOfTransitionSteps)
	for step := 1; step <= numberOfTransitionSteps; step++ {
		power := dischargingStep * float64(step)
		values[numberOfTransitionSteps-step] = b.averageValueUpToPower(b.dischargingItems, power)
	}
	return values
}

// averageValueUpToPower returns the power-weighted average monetary
// value of dispatching power MW against items, interpolating within the
// item whose cumulated power band straddles power. Returns NaN if power
// exceeds every known item's cumulated upper power. Grounded on
// MeritOrderSensitivity.calcValueAtPower, which the abstract original
// leaves to concrete subclasses; both PriceSensitivity and
// CostSensitivity share this cumulative-average implementation since
// their only difference is which per-item field feeds monetaryValue.
func (b *base) averageValueUpToPower(items []Item, power float64) float64 {
	if power <= 0 {
		return 0
	}
	if len(items) == 0 || items[len(items)-1].CumulatedUpperPower < power {
		return math.NaN()
	}

	total := 0.0
	for _, it := range items {
		if it.CumulatedUpperPower <= power {
			total += b.policy.monetaryValue(it)
			continue
		}
		fraction := (power - it.CumulatedLowerPower) / it.Power
		total += fraction * b.policy.monetaryValue(it)
		break
	}
	return total / power
}

// MarginalValueAt returns the per-unit value of the single item that
// would become marginal for externalEnergyDeltaInMW, i.e. the item whose
// cumulated power band contains that magnitude, without averaging over
// the items dispatched ahead of it. This is the value a bid must clear
// at the award boundary, distinct from ValuesInSteps' cumulative average
// used as the dynamic program's objective.
func (b *base) MarginalValueAt(externalEnergyDeltaInMW float64) float64 {
	switch {
	case externalEnergyDeltaInMW == 0:
		return math.NaN()
	case externalEnergyDeltaInMW > 0:
		return marginalItemValue(b.chargingItems, externalEnergyDeltaInMW, b.policy.monetaryValue)
	default:
		return marginalItemValue(b.dischargingItems, -externalEnergyDeltaInMW, b.policy.monetaryValue)
	}
}

// marginalItemValue finds the item whose cumulated power band contains
// power and returns its per-unit value, i.e. its monetary value divided
// by its own power. It falls back to the last item if power exceeds
// every known band, and to NaN if there is no item at all.
func marginalItemValue(items []Item, power float64, monetaryValue func(Item) float64) float64 {
	if len(items) == 0 {
		return math.NaN()
	}
	for _, it := range items {
		if it.CumulatedUpperPower >= power {
			return monetaryValue(it) / it.Power
		}
	}
	last := items[len(items)-1]
	return monetaryValue(last) / last.Power
}
