package strategist

import (
	"math"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/sensitivity"
	"github.com/gridflex/flexcore/core/storage"
)

// MaxProfitPriceImpact maximizes trading profit the same way
// MaxProfitPriceTaker does, but values each candidate power step against
// the stepwise PriceSensitivity derived from the cleared book instead of
// a single forecast price, so its own dispatch is priced against the
// offer that would actually become marginal at that step rather than
// assuming the market clears at an unaffected price. Grounded on the
// price-impacting sibling of
// agents.storage.arbitrageStrategists.ProfitMaximiserPriceTaker.
type MaxProfitPriceImpact struct {
	device                   *storage.Device
	optimizer                *Optimizer
	numberOfTransitionStates int
	priceCurves              map[clock.TimeStamp][]float64
	sensitivities            map[clock.TimeStamp]*sensitivity.PriceSensitivity
	limits                   market.PriceLimits
	latest                   *schedule.BidSchedule
}

// NewMaxProfitPriceImpact builds a price-impact-aware profit maximizer
// for device, discretizing its state space into numberOfEnergyStates
// energy levels and numberOfTransitionStates power steps per planning
// period.
func NewMaxProfitPriceImpact(cfg Config, device *storage.Device, numberOfEnergyStates, numberOfTransitionStates int) *MaxProfitPriceImpact {
	return &MaxProfitPriceImpact{
		device:                   device,
		optimizer:                NewOptimizer(device, numberOfEnergyStates, numberOfTransitionStates, cfg.ScheduleDurationPeriods, true),
		numberOfTransitionStates: numberOfTransitionStates,
		priceCurves:              make(map[clock.TimeStamp][]float64),
		sensitivities:            make(map[clock.TimeStamp]*sensitivity.PriceSensitivity),
		limits:                   cfg.PriceLimits,
	}
}

// UpdateForesight derives a PriceSensitivity from the cleared books and
// caches its stepwise price curve for period.
func (s *MaxProfitPriceImpact) UpdateForesight(period clock.TimePeriod, supply, demand *market.SortedBook) error {
	sens := sensitivity.NewPriceSensitivity()
	sens.UpdatePowers(s.device.ExternalChargingPowerInMW(), -s.device.ExternalDischargingPowerInMW())
	sens.UpdateSensitivities(supply, demand)
	s.priceCurves[period.Start] = sens.ValuesInSteps(s.numberOfTransitionStates)
	s.sensitivities[period.Start] = sens
	return nil
}

func (s *MaxProfitPriceImpact) incomeOf(period clock.TimePeriod, stepIndex int, externalDelta float64) float64 {
	curve, ok := s.priceCurves[period.Start]
	if !ok || stepIndex < 0 || stepIndex >= len(curve) {
		return 0
	}
	price := curve[stepIndex]
	if math.IsNaN(price) {
		return 0
	}
	return -externalDelta * price
}

// CreateSchedule runs the DP optimization and returns the resulting plan.
func (s *MaxProfitPriceImpact) CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error) {
	if err := s.optimizer.Optimize(timeSegment, s.incomeOf); err != nil {
		return nil, err
	}
	element := 0
	bidPriceOf := func(externalEnergyDelta float64) float64 {
		period := timeSegment.ShiftByDuration(element)
		element++
		return s.calcBidPrice(period, externalEnergyDelta)
	}
	result := s.optimizer.BuildSchedule(timeSegment, bidPriceOf)
	s.latest = result
	return result, nil
}

// calcBidPrice uses the PriceSensitivity's own local marginal value at
// period for the chosen power, placing the bid at the award boundary
// instead of a hard price limit. Falls back to the hard limits if no
// sensitivity was recorded or it has no coverage at that power.
func (s *MaxProfitPriceImpact) calcBidPrice(period clock.TimePeriod, externalEnergyDelta float64) float64 {
	if externalEnergyDelta == 0 {
		return math.NaN()
	}
	if sens, ok := s.sensitivities[period.Start]; ok {
		if value := sens.MarginalValueAt(externalEnergyDelta); !math.IsNaN(value) {
			return value
		}
	}
	if externalEnergyDelta < 0 {
		return s.limits.MinimalPrice
	}
	return s.limits.ScarcityPrice
}

// ChargingPowerForecastInMW reports the charging power planned by the
// most recent schedule, or 0 if none covers targetTime.
func (s *MaxProfitPriceImpact) ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64 {
	if s.latest == nil {
		return 0
	}
	power, _, err := s.latest.ChargingAt(targetTime)
	if err != nil {
		return 0
	}
	return power
}
