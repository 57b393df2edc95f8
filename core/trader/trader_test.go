package trader

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/storage"
	"github.com/gridflex/flexcore/core/strategist"
)

func testDevice() *storage.Device {
	return storage.NewDevice(storage.Specification{
		EnergyToPowerRatio:       2,
		SelfDischargeRatePerHour: 0,
		ChargingEfficiency:       1,
		DischargingEfficiency:    1,
		InitialEnergyLevelInMWH:  5,
		InstalledPowerInMW:       5,
	})
}

func TestTrader_BidsForBuildsAndReusesSchedule(t *testing.T) {
	device := testDevice()
	strat := strategist.NewMaxProfitPriceTaker(strategist.Config{ScheduleDurationPeriods: 2, PriceLimits: market.DefaultPriceLimits}, device, 5, 2)
	tr := New("storage-1", device, strat, 0.1, zerolog.Nop())

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	bids, err := tr.BidsFor(0, period)
	require.NoError(t, err)
	if len(bids) > 0 {
		assert.Equal(t, "storage-1", bids[0].TraderID)
	}
}

func TestTrader_ApplyAwardChargesDevice(t *testing.T) {
	device := testDevice()
	strat := strategist.NewMaxProfitPriceTaker(strategist.Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}, device, 5, 2)
	tr := New("storage-1", device, strat, 0.1, zerolog.Nop())

	limits := market.DefaultPriceLimits
	supply := market.NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 3, PriceInEURperMWH: limits.ScarcityPrice, Side: market.Supply, TraderID: "storage-1"}))
	demand := market.NewDemandBook(limits)
	require.NoError(t, demand.AddBid(market.Bid{EnergyInMWH: 3, PriceInEURperMWH: limits.ScarcityPrice, Side: market.Demand, TraderID: "external-load"}))

	result, err := market.Clear(supply, demand, market.FirstComeFirstServe, nil)
	require.NoError(t, err)

	before := device.CurrentEnergyInStorageInMWH()
	tr.ApplyAward(0, result)
	assert.Less(t, device.CurrentEnergyInStorageInMWH(), before)
}
