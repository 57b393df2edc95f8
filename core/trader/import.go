package trader

import (
	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/timeseries"
)

// ImportTrader offers imported energy at the market as a pure supply
// side, sourced from a fixed exogenous availability and cost time
// series. It never charges or discharges a Device and ignores awards
// beyond bookkeeping: it exists to model an interconnector or grid
// import contract as a boundary case for market clearing, where supply
// availability and price come from outside the merit order entirely.
// Grounded on agents.trader.ImportTrader.
type ImportTrader struct {
	id                   string
	availableEnergyInMWH timeseries.TimeSeries
	importCostInEURperMWH timeseries.TimeSeries

	lastAwardedEnergyInMWH float64
}

// NewImportTrader builds an ImportTrader identified by id, offering
// availableEnergyInMWH at importCostInEURperMWH for every hour.
func NewImportTrader(id string, availableEnergyInMWH, importCostInEURperMWH timeseries.TimeSeries) *ImportTrader {
	return &ImportTrader{id: id, availableEnergyInMWH: availableEnergyInMWH, importCostInEURperMWH: importCostInEURperMWH}
}

// ID returns the trader identity used to tag its bids and read back its
// awards from a cleared order book.
func (t *ImportTrader) ID() string { return t.id }

// BidsFor returns a single supply bid for whatever energy is available
// for import at now, priced at the configured import cost. Grounded on
// ImportTrader.prepareBidsFor.
func (t *ImportTrader) BidsFor(now clock.TimeStamp, _ clock.TimePeriod) ([]market.Bid, error) {
	energy := t.availableEnergyInMWH.ValueLinear(now)
	if energy <= 0 {
		return nil, nil
	}
	cost := t.importCostInEURperMWH.ValueLinear(now)
	return []market.Bid{{EnergyInMWH: energy, PriceInEURperMWH: cost, Side: market.Supply, TraderID: t.id}}, nil
}

// ApplyAward records the awarded import volume and returns it. Grounded
// on ImportTrader.evaluateAwardedSupplyBids.
func (t *ImportTrader) ApplyAward(_ clock.TimeStamp, result *market.ClearingResult) float64 {
	t.lastAwardedEnergyInMWH = result.Supply.TraderPower(t.id)
	return t.lastAwardedEnergyInMWH
}

// AwardedEnergyInMWH reports the most recently applied award.
func (t *ImportTrader) AwardedEnergyInMWH() float64 { return t.lastAwardedEnergyInMWH }

// UpdateForesight is a no-op: an ImportTrader's supply comes from a
// fixed exogenous series, never from the cleared merit order.
func (t *ImportTrader) UpdateForesight(clock.TimePeriod, *market.ClearingResult) error { return nil }
