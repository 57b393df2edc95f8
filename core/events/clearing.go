package events

import "github.com/gridflex/flexcore/core/clock"

// ClearingEvent is published when a market clearing completes.
type ClearingEvent struct {
	Period                 clock.TimePeriod
	AwardedPrice           float64
	AwardedCumulativePower float64
}
