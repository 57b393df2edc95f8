package events

import "github.com/gridflex/flexcore/core/market"

// BidEvent is published when a trader submits its bids for a period.
type BidEvent struct {
	TraderID string
	Bids     []market.Bid
}
