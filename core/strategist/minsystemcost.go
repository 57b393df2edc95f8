package strategist

import (
	"math"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/sensitivity"
	"github.com/gridflex/flexcore/core/storage"
)

// MinSystemCost minimizes total system production cost rather than the
// trader's own profit, dispatching whenever the marginal cost sensitivity
// of the merit order favors it. It has no direct analogue by that name in
// the original model but is assembled from the same
// MeritOrderSensitivity/DynamicProgrammingStrategist parts that back
// ProfitMaximiserPriceTaker, substituting CostSensitivity for
// PriceNoSensitivity.
type MinSystemCost struct {
	device                   *storage.Device
	optimizer                *Optimizer
	numberOfTransitionStates int
	costCurves               map[clock.TimeStamp][]float64
	sensitivities            map[clock.TimeStamp]*sensitivity.CostSensitivity
	limits                   market.PriceLimits
	latest                   *schedule.BidSchedule
}

// NewMinSystemCost builds a system-cost-minimizing strategist for device.
func NewMinSystemCost(cfg Config, device *storage.Device, numberOfEnergyStates, numberOfTransitionStates int) *MinSystemCost {
	return &MinSystemCost{
		device:                   device,
		optimizer:                NewOptimizer(device, numberOfEnergyStates, numberOfTransitionStates, cfg.ScheduleDurationPeriods, false),
		numberOfTransitionStates: numberOfTransitionStates,
		costCurves:               make(map[clock.TimeStamp][]float64),
		sensitivities:            make(map[clock.TimeStamp]*sensitivity.CostSensitivity),
		limits:                   cfg.PriceLimits,
	}
}

// UpdateForesight derives a CostSensitivity from the cleared books and
// caches its stepwise cost curve for period.
func (s *MinSystemCost) UpdateForesight(period clock.TimePeriod, supply, demand *market.SortedBook) error {
	sens := sensitivity.NewCostSensitivity()
	sens.UpdatePowers(s.device.ExternalChargingPowerInMW(), -s.device.ExternalDischargingPowerInMW())
	sens.UpdateSensitivities(supply, demand)
	s.costCurves[period.Start] = sens.ValuesInSteps(s.numberOfTransitionStates)
	s.sensitivities[period.Start] = sens
	return nil
}

func (s *MinSystemCost) costOf(period clock.TimePeriod, stepIndex int, externalDelta float64) float64 {
	curve, ok := s.costCurves[period.Start]
	if !ok || stepIndex < 0 || stepIndex >= len(curve) {
		return 0
	}
	value := curve[stepIndex]
	if math.IsNaN(value) {
		return 0
	}
	return externalDelta * value
}

// CreateSchedule runs the DP optimization and returns the resulting plan.
func (s *MinSystemCost) CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error) {
	if err := s.optimizer.Optimize(timeSegment, s.costOf); err != nil {
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

// calcBidPrice reads the local marginal cost the CostSensitivity
// recorded for period at the chosen power, so the bid sits at the award
// boundary instead of the book's outer price limits, per the
// price-impacting bid rule. Falls back to the hard limits if no
// sensitivity was recorded for period or it has no coverage at that
// power.
func (s *MinSystemCost) calcBidPrice(period clock.TimePeriod, externalEnergyDelta float64) float64 {
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
func (s *MinSystemCost) ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64 {
	if s.latest == nil {
		return 0
	}
	power, _, err := s.latest.ChargingAt(targetTime)
	if err != nil {
		return 0
	}
	return power
}
