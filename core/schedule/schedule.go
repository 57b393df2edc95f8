// Package schedule defines the plan a Strategist hands to a Trader: a
// fixed-length sequence of charging power and bid price decisions, plus
// the initial energy the device is expected to hold at the start of each
// planned period. Grounded on agents.flexibility.DispatchSchedule in the
// original model. It has no dependency on the strategist that produced it
// or the trader that consumes it, so both can depend on this package
// without an import cycle.
package schedule

import (
	"fmt"

	"github.com/gridflex/flexcore/core/clock"
)

// BidSchedule is a Strategist's plan for a fixed number of consecutive
// operation periods starting at Period.
type BidSchedule struct {
	Period                     clock.TimePeriod
	ChargingPerPeriod          []float64
	BidPriceInEURperMWH        []float64
	ExpectedInitialEnergyInMWH []float64
}

// New allocates a BidSchedule of the given length, starting at period.
func New(period clock.TimePeriod, length int) *BidSchedule {
	return &BidSchedule{
		Period:                     period,
		ChargingPerPeriod:          make([]float64, length),
		BidPriceInEURperMWH:        make([]float64, length),
		ExpectedInitialEnergyInMWH: make([]float64, length),
	}
}

// Len returns the number of planned periods.
func (s *BidSchedule) Len() int { return len(s.ChargingPerPeriod) }

// PeriodAt returns the TimePeriod for the element-th planned period.
func (s *BidSchedule) PeriodAt(element int) clock.TimePeriod {
	return s.Period.ShiftByDuration(element)
}

// ErrScheduleExhausted is returned when a caller asks for a TimeStamp past
// the end of a BidSchedule.
var ErrScheduleExhausted = fmt.Errorf("schedule: bid schedule has no more planned periods")

// IsApplicable reports whether this schedule can still be used at now for
// a device currently holding actualInitialEnergyInMWH: now must fall
// within the plan's covered window, and the device's actual energy must
// not have drifted from the planned value by more than toleranceInMWH. A
// stale or invalidated schedule (device dispatched off-plan, e.g. by a
// curtailment order) should trigger a fresh optimization instead of
// silently continuing on outdated numbers.
func (s *BidSchedule) IsApplicable(now clock.TimeStamp, actualInitialEnergyInMWH, toleranceInMWH float64) bool {
	element := s.elementAt(now)
	if element < 0 || element >= s.Len() {
		return false
	}
	deviation := actualInitialEnergyInMWH - s.ExpectedInitialEnergyInMWH[element]
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation <= toleranceInMWH
}

func (s *BidSchedule) elementAt(now clock.TimeStamp) int {
	if now < s.Period.Start || s.Period.Duration <= 0 {
		return -1
	}
	return int((now - s.Period.Start) / clock.TimeStamp(s.Period.Duration))
}

// ChargingAt returns the planned charging power and bid price for now, or
// ErrScheduleExhausted if now falls outside the plan.
func (s *BidSchedule) ChargingAt(now clock.TimeStamp) (chargingInMW, bidPriceInEURperMWH float64, err error) {
	element := s.elementAt(now)
	if element < 0 || element >= s.Len() {
		return 0, 0, ErrScheduleExhausted
	}
	return s.ChargingPerPeriod[element], s.BidPriceInEURperMWH[element], nil
}
