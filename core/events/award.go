package events

import "github.com/gridflex/flexcore/core/clock"

// AwardEvent is published for each trader after a clearing, reporting the
// net power that clearing awarded it.
type AwardEvent struct {
	TraderID   string
	Period     clock.TimePeriod
	NetPowerMW float64
}
