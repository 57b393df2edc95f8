package strategist

import (
	"errors"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/timeseries"
)

// Electrolyzer models the physical conversion unit backing a
// green-hydrogen strategist: a peak power rating and the efficiency
// converting consumed electricity into hydrogen energy content. Grounded
// on agents.electrolysis.Electrolyzer.
type Electrolyzer struct {
	PeakPowerInMW    float64
	ConversionFactor float64
}

// CappedElectricDemandInMW returns the electricity the unit could
// actually consume this hour given a renewable yield potential of
// yieldPotentialInMWH, capped at its own rating. Grounded on
// Electrolyzer.calcCappedElectricDemandInMW.
func (e Electrolyzer) CappedElectricDemandInMW(yieldPotentialInMWH float64) float64 {
	switch {
	case yieldPotentialInMWH <= 0:
		return 0
	case yieldPotentialInMWH > e.PeakPowerInMW:
		return e.PeakPowerInMW
	default:
		return yieldPotentialInMWH
	}
}

// ProducedHydrogenInMWH converts one hour of consumed electric energy
// into produced hydrogen energy content. Grounded on
// Electrolyzer.calcProducedHydrogenOneHour.
func (e Electrolyzer) ProducedHydrogenInMWH(electricEnergyInMWH float64) float64 {
	return electricEnergyInMWH * e.ConversionFactor
}

// ErrMonthlyCorrelationNotImplemented is returned by
// NewElectrolyzerMonthly: balancing hydrogen production against
// renewable yield over a full billing period needs a DP axis tracking
// cumulative production that this strategist does not implement, the
// same way GreenHydrogen's constructor rejects
// TemporalCorrelationPeriod.MONTHLY today.
var ErrMonthlyCorrelationNotImplemented = errors.New("strategist: monthly correlation period is not implemented")

// NewElectrolyzerMonthly always fails: it exists so a configuration
// naming the monthly correlation period gets an explicit, immediate
// rejection instead of silently falling back to hourly equivalence.
func NewElectrolyzerMonthly(Config, Electrolyzer, timeseries.TimeSeries) (*ElectrolyzerHourly, error) {
	return nil, ErrMonthlyCorrelationNotImplemented
}

// ElectrolyzerHourly dispatches an electrolyzer to consume exactly the
// PPA yield it can absorb each hour, and offers any surplus yield to the
// market as supply. It never draws grey electricity: production simply
// drops in hours of insufficient renewable yield. This is the hourly
// temporal correlation case; grounded on
// agents.trader.electrolysis.GreenHydrogenTrader.
type ElectrolyzerHourly struct {
	cfg                    Config
	device                 Electrolyzer
	yieldPotential         timeseries.TimeSeries
	hydrogenPriceInEURperMWH float64
	supportRateInEURperMWH float64

	latest        *schedule.BidSchedule
	surplusByHour map[clock.TimeStamp]float64
}

// NewElectrolyzerHourly builds an hourly-correlation electrolyzer
// strategist, sourcing its renewable yield potential from
// yieldPotential.
func NewElectrolyzerHourly(cfg Config, device Electrolyzer, yieldPotential timeseries.TimeSeries) *ElectrolyzerHourly {
	return &ElectrolyzerHourly{
		cfg:            cfg,
		device:         device,
		yieldPotential: yieldPotential,
		surplusByHour:  make(map[clock.TimeStamp]float64),
	}
}

// UpdateHydrogenPriceForecast stores the hydrogen sale price and any
// support-policy payout rate used to price the electrolyzer's demand
// bid. Grounded on ElectrolyzerStrategist.storeHydrogenPriceForecast /
// HydrogenSupportClient.
func (e *ElectrolyzerHourly) UpdateHydrogenPriceForecast(hydrogenPriceInEURperMWH, supportRateInEURperMWH float64) {
	e.hydrogenPriceInEURperMWH = hydrogenPriceInEURperMWH
	e.supportRateInEURperMWH = supportRateInEURperMWH
}

// UpdateForesight is a no-op: this strategist derives its plan entirely
// from the PPA yield forecast, never from the cleared merit order.
func (e *ElectrolyzerHourly) UpdateForesight(clock.TimePeriod, *market.SortedBook, *market.SortedBook) error {
	return nil
}

// opportunityCostInEURperMWH is the hydrogen-equivalent value of one
// electric MWh consumed by the electrolyzer, computed exactly as
// GreenHydrogenTrader.prepareBids does.
func (e *ElectrolyzerHourly) opportunityCostInEURperMWH() float64 {
	return (e.hydrogenPriceInEURperMWH + e.supportRateInEURperMWH) * e.device.ConversionFactor
}

// CreateSchedule assigns each hour's electrolyzer demand to
// min(rating, yield potential); no backward-induction search is needed
// since the electrolyzer never trades across hours. The returned
// schedule's ChargingPerPeriod carries the electrolyzer's own demand,
// not the market surplus bid; use SurplusInMWHAt for the second bid.
func (e *ElectrolyzerHourly) CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error) {
	result := schedule.New(timeSegment, e.cfg.ScheduleDurationPeriods)
	opportunityCost := e.opportunityCostInEURperMWH()

	for element := 0; element < e.cfg.ScheduleDurationPeriods; element++ {
		period := timeSegment.ShiftByDuration(element)
		yield := e.yieldPotential.ValueLinear(period.Start)
		demand := e.device.CappedElectricDemandInMW(yield)
		surplus := yield - demand
		if surplus < 0 {
			surplus = 0
		}

		result.ChargingPerPeriod[element] = demand
		result.BidPriceInEURperMWH[element] = opportunityCost
		e.surplusByHour[period.Start] = surplus
	}

	e.latest = result
	return result, nil
}

// SurplusInMWHAt returns the surplus renewable yield offered to the
// market as a zero-priced supply bid for the hour starting at t, or 0 if
// no schedule covers it.
func (e *ElectrolyzerHourly) SurplusInMWHAt(t clock.TimeStamp) float64 {
	return e.surplusByHour[t]
}

// ChargingPowerForecastInMW reports the electrolyzer's planned demand at
// targetTime, or 0 if no schedule covers it.
func (e *ElectrolyzerHourly) ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64 {
	power, _, err := e.BidAt(targetTime)
	if err != nil {
		return 0
	}
	return power
}

// BidAt returns the planned electrolyzer demand and its bid price for
// targetTime, or schedule.ErrScheduleExhausted if no schedule covers it.
func (e *ElectrolyzerHourly) BidAt(targetTime clock.TimeStamp) (demandInMW, priceInEURperMWH float64, err error) {
	if e.latest == nil {
		return 0, 0, schedule.ErrScheduleExhausted
	}
	return e.latest.ChargingAt(targetTime)
}

// Device returns the electrolyzer's physical conversion parameters.
func (e *ElectrolyzerHourly) Device() Electrolyzer { return e.device }
