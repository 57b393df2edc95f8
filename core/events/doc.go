// Package events defines the market and trading events published on the
// internal event bus. Grounded on the teacher's core/events package,
// re-keyed from dispatch signals/acks to clearing/award/strategy/bid
// occurrences.
//
// Available event types:
//   - ClearingEvent: a market clearing completed
//   - AwardEvent: a trader's net award from a clearing
//   - StrategyEvent: a Strategist replanned or failed to
//   - BidEvent: a trader submitted bids for a period
package events
