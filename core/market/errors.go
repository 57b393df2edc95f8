package market

import "errors"

var (
	// ErrNegativeSupplyPower is returned when a supply Bid carries negative energy.
	ErrNegativeSupplyPower = errors.New("market: negative supply bid power is forbidden")
	// ErrNegativeDemandPower is returned when a demand Bid carries negative energy.
	ErrNegativeDemandPower = errors.New("market: negative demand bid power is forbidden")
	// ErrAlreadySorted reports adding bids to a closed book. No function in
	// this package returns it: a SortedBook has no AddBid method.
	ErrAlreadySorted = errors.New("market: order book is already sorted, cannot add further bids")
	// ErrNotSorted reports an operation that needs a sorted book. No
	// function in this package returns it.
	ErrNotSorted = errors.New("market: order book must be sorted before this operation")
	// ErrPriceOutOfBand is returned when a bid's price lies outside [minimalPrice, scarcityPrice].
	ErrPriceOutOfBand = errors.New("market: bid price outside the legal price band")
)
