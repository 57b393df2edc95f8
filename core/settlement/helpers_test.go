package settlement

import (
	"testing"

	"github.com/gridflex/flexcore/core/market"
)

func marketLimits() market.PriceLimits { return market.DefaultPriceLimits }

func newSupplyBook(limits market.PriceLimits, energy, price float64, traderID string) *market.UnsortedBook {
	book := market.NewSupplyBook(limits)
	_ = book.AddBid(market.Bid{EnergyInMWH: energy, PriceInEURperMWH: price, Side: market.Supply, TraderID: traderID})
	return book
}

func newDemandBook(limits market.PriceLimits, energy, price float64, traderID string) *market.UnsortedBook {
	book := market.NewDemandBook(limits)
	_ = book.AddBid(market.Bid{EnergyInMWH: energy, PriceInEURperMWH: price, Side: market.Demand, TraderID: traderID})
	return book
}

func clearFor(t *testing.T, supply, demand *market.UnsortedBook) *market.ClearingResult {
	t.Helper()
	result, err := market.Clear(supply, demand, market.FirstComeFirstServe, nil)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	return result
}
