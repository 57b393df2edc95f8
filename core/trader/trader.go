package trader

import (
	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/storage"
	"github.com/gridflex/flexcore/core/strategist"
)

// Trader couples a Strategist's plan to a physical Device and the
// market: it turns the plan into Bids, applies whatever the market
// actually awards back to the device, and re-plans whenever the device's
// real trajectory drifts from what was planned. Grounded on
// agents.storage.StorageTrader in the original model.
type Trader struct {
	id                     string
	device                 *storage.Device
	strategist             strategist.Strategist
	dispatchToleranceInMWH float64
	current                *schedule.BidSchedule
	log                    zerolog.Logger
}

// New builds a Trader identified by id, dispatching device according to
// strat. dispatchToleranceInMWH bounds how far the device's actual energy
// may drift from a schedule's plan before it is considered stale.
func New(id string, device *storage.Device, strat strategist.Strategist, dispatchToleranceInMWH float64, log zerolog.Logger) *Trader {
	return &Trader{
		id:                     id,
		device:                 device,
		strategist:             strat,
		dispatchToleranceInMWH: dispatchToleranceInMWH,
		log:                    log,
	}
}

// ID returns the trader identity used to tag its bids and read back its
// awards from a cleared order book.
func (t *Trader) ID() string { return t.id }

// BidsFor returns the bids this trader submits for the operation period
// containing now, re-planning via the Strategist if the currently held
// schedule is missing or no longer applicable.
func (t *Trader) BidsFor(now clock.TimeStamp, period clock.TimePeriod) ([]market.Bid, error) {
	if t.current == nil || !t.current.IsApplicable(now, t.device.CurrentEnergyInStorageInMWH(), t.dispatchToleranceInMWH) {
		if t.current != nil {
			t.log.Debug().Str("trader", t.id).Msg("schedule no longer applicable, replanning")
		}
		next, err := t.strategist.CreateSchedule(period)
		if err != nil {
			return nil, err
		}
		t.current = next
	}

	power, price, err := t.current.ChargingAt(now)
	if err != nil {
		return nil, err
	}
	if power == 0 {
		return nil, nil
	}

	bid := market.Bid{PriceInEURperMWH: price, TraderID: t.id}
	if power > 0 {
		bid.EnergyInMWH = power
		bid.Side = market.Demand
	} else {
		bid.EnergyInMWH = -power
		bid.Side = market.Supply
	}
	return []market.Bid{bid}, nil
}

// ApplyAward charges or discharges the device by the net power the
// cleared market actually awarded this trader, and returns the realized
// external power after the device's own physical restrictions apply.
func (t *Trader) ApplyAward(now clock.TimeStamp, result *market.ClearingResult) float64 {
	bought := result.Demand.TraderPower(t.id)
	sold := result.Supply.TraderPower(t.id)
	return t.device.ChargeInMW(bought-sold, now)
}

// UpdateForesight forwards a cleared or forecasted order book pair to the
// underlying Strategist for use in its next planning cycle.
func (t *Trader) UpdateForesight(period clock.TimePeriod, result *market.ClearingResult) error {
	return t.strategist.UpdateForesight(period, result.Supply, result.Demand)
}
