package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClear_NoTies(t *testing.T) {
	limits := DefaultPriceLimits
	supply := NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(Bid{EnergyInMWH: 10, PriceInEURperMWH: 20, Side: Supply, TraderID: "gen-a"}))
	require.NoError(t, supply.AddBid(Bid{EnergyInMWH: 5, PriceInEURperMWH: 50, Side: Supply, TraderID: "gen-b"}))

	demand := NewDemandBook(limits)
	require.NoError(t, demand.AddBid(Bid{EnergyInMWH: 12, PriceInEURperMWH: 100, Side: Demand, TraderID: "load-a"}))

	result, err := Clear(supply, demand, FirstComeFirstServe, nil)
	require.NoError(t, err)

	assert.Equal(t, 50.0, result.AwardedPrice)
	assert.Equal(t, 12.0, result.AwardedCumulativePower)

	gen := result.Supply.ItemsByTrader("gen-a")
	require.Len(t, gen, 1)
	assert.Equal(t, 10.0, gen[0].AwardedPower)

	genB := result.Supply.ItemsByTrader("gen-b")
	require.Len(t, genB, 1)
	assert.Equal(t, 2.0, genB[0].AwardedPower)

	assert.Equal(t, 12.0, result.Demand.TraderPower("load-a"))
}

func TestClear_PriceSettingTieSameShares(t *testing.T) {
	limits := DefaultPriceLimits
	supply := NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(Bid{EnergyInMWH: 4, PriceInEURperMWH: 30, Side: Supply, TraderID: "gen-a"}))
	require.NoError(t, supply.AddBid(Bid{EnergyInMWH: 4, PriceInEURperMWH: 30, Side: Supply, TraderID: "gen-b"}))

	demand := NewDemandBook(limits)
	require.NoError(t, demand.AddBid(Bid{EnergyInMWH: 6, PriceInEURperMWH: 100, Side: Demand, TraderID: "load-a"}))

	result, err := Clear(supply, demand, SameShares, nil)
	require.NoError(t, err)

	assert.Equal(t, 30.0, result.AwardedPrice)
	assert.Equal(t, 6.0, result.AwardedCumulativePower)
	assert.InDelta(t, 3.0, result.Supply.TraderPower("gen-a"), 1e-9)
	assert.InDelta(t, 3.0, result.Supply.TraderPower("gen-b"), 1e-9)
}

func TestClear_EmptySupplyBookHitsScarcityPrice(t *testing.T) {
	limits := DefaultPriceLimits
	supply := NewSupplyBook(limits)
	demand := NewDemandBook(limits)
	require.NoError(t, demand.AddBid(Bid{EnergyInMWH: 6, PriceInEURperMWH: 100, Side: Demand, TraderID: "load-a"}))

	result, err := Clear(supply, demand, FirstComeFirstServe, nil)
	require.NoError(t, err)

	assert.Equal(t, limits.ScarcityPrice, result.AwardedPrice)
	assert.Equal(t, 0.0, result.AwardedCumulativePower)
}

func TestClear_EmptyDemandBookHitsMinimalPrice(t *testing.T) {
	limits := DefaultPriceLimits
	supply := NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(Bid{EnergyInMWH: 6, PriceInEURperMWH: 20, Side: Supply, TraderID: "gen-a"}))
	demand := NewDemandBook(limits)

	result, err := Clear(supply, demand, FirstComeFirstServe, nil)
	require.NoError(t, err)

	assert.Equal(t, limits.MinimalPrice, result.AwardedPrice)
	assert.Equal(t, 0.0, result.AwardedCumulativePower)
}

func TestUnsortedBook_RejectsNegativeEnergy(t *testing.T) {
	book := NewSupplyBook(DefaultPriceLimits)
	err := book.AddBid(Bid{EnergyInMWH: -1, PriceInEURperMWH: 20, Side: Supply})
	assert.ErrorIs(t, err, ErrNegativeSupplyPower)
}

func TestUnsortedBook_RejectsOutOfBandPrice(t *testing.T) {
	book := NewSupplyBook(DefaultPriceLimits)
	err := book.AddBid(Bid{EnergyInMWH: 1, PriceInEURperMWH: 999999, Side: Supply})
	assert.ErrorIs(t, err, ErrPriceOutOfBand)
}

func TestSortedBook_ClearReturnsFreshBook(t *testing.T) {
	book := NewSupplyBook(DefaultPriceLimits)
	require.NoError(t, book.AddBid(Bid{EnergyInMWH: 1, PriceInEURperMWH: 20, Side: Supply}))
	sorted := book.Sort()
	fresh := sorted.Clear()
	assert.Equal(t, 0, fresh.Len())
	assert.Equal(t, Supply, fresh.Side())
}
