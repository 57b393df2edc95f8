// Package strategist decides how a storage Device should charge and
// discharge. Every flavor - profit maximizing, system-cost minimizing, or
// simply replaying a file - implements the single Strategist capability
// below rather than inheriting from a shared base class, per spec.md §9
// REDESIGN FLAG a. Grounded on agents.storage.arbitrageStrategists in the
// original model, whose ArbitrageStrategist/DynamicProgrammingStrategist
// class hierarchy is flattened here into composition: DP-based flavors
// embed the shared Optimizer instead of extending a common superclass.
package strategist

import (
	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/schedule"
)

// Strategist is the capability every dispatch strategy provides: given
// the current planning window it returns a BidSchedule, and it may
// consume merit-order foresight (a forecasted clearing) or report an
// ad-hoc charging power forecast for periods outside its own schedule.
type Strategist interface {
	// CreateSchedule plans scheduleDurationPeriods periods starting at
	// timeSegment and returns the resulting BidSchedule.
	CreateSchedule(timeSegment clock.TimePeriod) (*schedule.BidSchedule, error)
	// UpdateForesight records a forecasted or cleared order book pair for
	// timeSegment, letting price-impact-aware flavors anticipate their own
	// effect on the market. Flavors that ignore market impact accept this
	// as a no-op.
	UpdateForesight(timeSegment clock.TimePeriod, supply, demand *market.SortedBook) error
	// ChargingPowerForecastInMW reports the expected external charging
	// power at targetTime without requiring a full CreateSchedule call.
	ChargingPowerForecastInMW(targetTime clock.TimeStamp) float64
}

// Config carries the parameters shared by every Strategist flavor,
// mirroring the "generalInput" ParameterData group the original passes to
// every ArbitrageStrategist constructor.
type Config struct {
	ScheduleDurationPeriods int                `json:"schedule_duration_periods"`
	ForecastPeriods         int                `json:"forecast_periods"`
	PriceLimits             market.PriceLimits `json:"price_limits"`
}
