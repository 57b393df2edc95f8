package strategist

import (
	"math"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
	"github.com/gridflex/flexcore/core/storage"
)

// MaxProfitPriceTaker maximizes trading profit via backward-induction
// dynamic programming, assuming its own dispatch never moves the
// clearing price. Grounded on
// agents.storage.arbitrageStrategists.ProfitMaximiserPriceTaker.
type MaxProfitPriceTaker struct {
	device    *storage.Device
	optimizer *Optimizer
	limits    market.PriceLimits
	forecasts map[clock.TimeStamp]float64
	latest    *schedule.BidSchedule
}

// NewMaxProfitPriceTaker builds a price-taking profit maximizer for
// device, discretizing its state space into numberOfEnergyStates energy
// levels and numberOfTransitionStates power steps per planning period.
func NewMaxProfitPriceTaker(cfg Config, device *storage.Device, numberOfEnergyStates, numberOfTransitionStates int) *MaxProfitPriceTaker {
	return &MaxProfitPriceTaker{
		device:    device,
		optimizer: NewOptimizer(device, numberOfEnergyStates, numberOfTransitionStates, cfg.ScheduleDurationPeriods, true),
		limits:    cfg.PriceLimits,
		forecasts: make(map[clock.TimeStamp]float64),
	}
}

// UpdateForesight records the clearing price observed or forecasted for
// period, to be used as the assumed constant price for that period during
// the next CreateSchedule call. Mirrors storeMeritOrderForesight, reduced
// from a full per-period order book (unneeded by a price taker) to the
// single price it actually derives from one.
func (s *MaxProfitPriceTaker) UpdateForesight(period clock.TimePeriod, supply, demand *market.SortedBook) error {
	price := demand.AwardedPrice()
	if math.IsNaN(price) {
		price = supply.AwardedPrice()
	}
	s.forecasts[period.Start] = price
	return nil
}

func (s *MaxProfitPriceTaker) priceAt(period clock.TimePeriod) float64 {
	if price, ok := s.forecasts[period.Start]; ok && !math.IsNaN(price) {
		return price
	}
	return 0
}

// CreateSchedule runs the DP optimization and returns the resulting plan.
func (s *MaxProfitPriceTaker) CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error) {
	priceOf := func(period clock.TimePeriod, _ int, externalDelta float64) float64 {
		return -externalDelta * s.priceAt(period)
	}
	if err := s.optimizer.Optimize(timeSegment, priceOf); err != nil {
		return nil, err
	}
	result := s.optimizer.BuildSchedule(timeSegment, s.calcBidPrice)
	s.latest = result
	return result, nil
}

// calcBidPrice enforces the transition regardless of price: a bid to
// charge is submitted at the scarcity price, a bid to discharge at the
// minimal price, guaranteeing the plan's award. Mirrors
// ProfitMaximiserPriceTaker.calcBidPrice.
func (s *MaxProfitPriceTaker) calcBidPrice(externalEnergyDelta float64) float64 {
	switch {
	case externalEnergyDelta == 0:
		return math.NaN()
	case externalEnergyDelta < 0:
		return s.limits.MinimalPrice
	default:
		return s.limits.ScarcityPrice
	}
}

// ChargingPowerForecastInMW reports the charging power planned by the
// most recent schedule, or 0 if none covers targetTime.
func (s *MaxProfitPriceTaker) ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64 {
	if s.latest == nil {
		return 0
	}
	power, _, err := s.latest.ChargingAt(targetTime)
	if err != nil {
		return 0
	}
	return power
}
