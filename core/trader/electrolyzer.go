package trader

import (
	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/strategist"
)

// ElectrolyzerTrader couples an ElectrolyzerHourly strategist to the
// market without a physical storage Device: unlike Trader, it submits
// two bids per hour (electrolyzer demand at the hydrogen opportunity
// cost, and any renewable surplus as zero-priced supply) instead of a
// single net position, since the electrolyzer never discharges back
// into the market. Grounded on
// agents.trader.electrolysis.GreenHydrogenTrader.
type ElectrolyzerTrader struct {
	id         string
	strategist *strategist.ElectrolyzerHourly
	log        zerolog.Logger

	lastProducedHydrogenInMWH float64
}

// NewElectrolyzerTrader builds an ElectrolyzerTrader identified by id,
// dispatching strat.
func NewElectrolyzerTrader(id string, strat *strategist.ElectrolyzerHourly, log zerolog.Logger) *ElectrolyzerTrader {
	return &ElectrolyzerTrader{id: id, strategist: strat, log: log}
}

// ID returns the trader identity used to tag its bids and read back its
// awards from a cleared order book.
func (t *ElectrolyzerTrader) ID() string { return t.id }

// BidsFor returns the electrolyzer's demand bid (priced at the hydrogen
// opportunity cost) and, if the PPA yield exceeds what the electrolyzer
// can absorb this hour, a zero-priced supply bid for the surplus.
// Grounded on GreenHydrogenTrader.prepareBids.
func (t *ElectrolyzerTrader) BidsFor(now clock.TimeStamp, period clock.TimePeriod) ([]market.Bid, error) {
	if _, err := t.strategist.CreateSchedule(period); err != nil {
		return nil, err
	}

	demand, price, err := t.strategist.BidAt(now)
	if err != nil {
		return nil, err
	}

	bids := make([]market.Bid, 0, 2)
	if demand > 0 {
		bids = append(bids, market.Bid{EnergyInMWH: demand, PriceInEURperMWH: price, Side: market.Demand, TraderID: t.id})
	}
	if surplus := t.strategist.SurplusInMWHAt(now); surplus > 0 {
		bids = append(bids, market.Bid{EnergyInMWH: surplus, PriceInEURperMWH: 0, Side: market.Supply, TraderID: t.id})
	}
	return bids, nil
}

// ApplyAward records the hydrogen produced from whatever electricity the
// market actually awarded the electrolyzer's demand bid this hour.
// Unlike Trader.ApplyAward there is no physical storage state to charge:
// the electrolyzer either consumes the awarded power and produces
// hydrogen, or does not run at all. Grounded on
// GreenHydrogenTrader.digestAwards.
func (t *ElectrolyzerTrader) ApplyAward(_ clock.TimeStamp, result *market.ClearingResult) float64 {
	awardedDemand := result.Demand.TraderPower(t.id)
	t.lastProducedHydrogenInMWH = t.strategist.Device().ProducedHydrogenInMWH(awardedDemand)
	return awardedDemand
}

// ProducedHydrogenInMWH reports the hydrogen produced by the most
// recently applied award.
func (t *ElectrolyzerTrader) ProducedHydrogenInMWH() float64 {
	return t.lastProducedHydrogenInMWH
}

// UpdateForesight forwards a cleared or forecasted order book pair to
// the underlying strategist; ElectrolyzerHourly ignores it since its
// plan derives from the PPA yield forecast, not the merit order.
func (t *ElectrolyzerTrader) UpdateForesight(period clock.TimePeriod, result *market.ClearingResult) error {
	return t.strategist.UpdateForesight(period, result.Supply, result.Demand)
}
