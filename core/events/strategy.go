package events

import "time"

// StrategyEvent is published whenever a Trader's Strategist (re)plans a
// schedule, successfully or not.
type StrategyEvent struct {
	TraderID string
	Kind     string
	Duration time.Duration
	Err      error
}
