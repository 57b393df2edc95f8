package strategist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
	"github.com/gridflex/flexcore/core/storage"
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

func TestMaxProfitPriceTaker_NeverDischargesWhenCheapOrChargesWhenExpensive(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 2, PriceLimits: market.DefaultPriceLimits}
	s := NewMaxProfitPriceTaker(cfg, device, 5, 2)

	firstPeriod := clock.TimePeriod{Start: 0, Duration: 3600}
	require.NoError(t, s.UpdateForesight(firstPeriod, mustClearAt(t, 5), mustClearAt(t, 5)))
	require.NoError(t, s.UpdateForesight(firstPeriod.ShiftByDuration(1), mustClearAt(t, 500), mustClearAt(t, 500)))

	result, err := s.CreateSchedule(firstPeriod)
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	assert.GreaterOrEqual(t, result.ChargingPerPeriod[0], 0.0)
	assert.LessOrEqual(t, result.ChargingPerPeriod[1], 0.0)
}

func TestMinSystemCost_ProducesSchedule(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}
	s := NewMinSystemCost(cfg, device, 5, 2)

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	require.NoError(t, s.UpdateForesight(period, mustClearAt(t, 30), mustClearAt(t, 30)))

	result, err := s.CreateSchedule(period)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Len())
}

func TestMinSystemCost_CalcBidPriceUsesSensitivityMarginalValue(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}
	s := NewMinSystemCost(cfg, device, 5, 2)

	limits := market.DefaultPriceLimits
	supply := market.NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 5, PriceInEURperMWH: 30, MarginalCostInEURperMWH: 30, Side: market.Supply}))
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 5, PriceInEURperMWH: 60, MarginalCostInEURperMWH: 60, Side: market.Supply}))
	demand := market.NewDemandBook(limits)
	result, err := market.Clear(supply, demand, market.FirstComeFirstServe, nil)
	require.NoError(t, err)

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	require.NoError(t, s.UpdateForesight(period, result.Supply, result.Demand))

	assert.InDelta(t, 30.0, s.calcBidPrice(period, 5), 1e-9, "charging into the cheap block prices at its own marginal cost")
	assert.InDelta(t, 60.0, s.calcBidPrice(period, 10), 1e-9, "charging into the pricier block prices at its marginal cost")
}

func TestMinSystemCost_CalcBidPriceFallsBackToHardLimitsWithoutSensitivity(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}
	s := NewMinSystemCost(cfg, device, 5, 2)

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	assert.Equal(t, market.DefaultPriceLimits.ScarcityPrice, s.calcBidPrice(period, 5))
	assert.Equal(t, market.DefaultPriceLimits.MinimalPrice, s.calcBidPrice(period, -5))
}

// mustClearAt clears a trivial single-bid book at the given price on both
// sides and returns the supply-side sorted book, used to build a
// realistic SortedBook fixture without depending on strategist internals.
func mustClearAt(t *testing.T, price float64) *market.SortedBook {
	t.Helper()
	limits := market.DefaultPriceLimits
	supply := market.NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 10, PriceInEURperMWH: price, MarginalCostInEURperMWH: price, Side: market.Supply}))
	demand := market.NewDemandBook(limits)
	require.NoError(t, demand.AddBid(market.Bid{EnergyInMWH: 10, PriceInEURperMWH: price, Side: market.Demand}))
	result, err := market.Clear(supply, demand, market.FirstComeFirstServe, nil)
	require.NoError(t, err)
	return result.Supply
}

func TestFileDispatcher_ForecastsFromSeries(t *testing.T) {
	device := testDevice()
	series := constantSeries(t, 0.5)
	cfg := Config{ScheduleDurationPeriods: 3, PriceLimits: market.DefaultPriceLimits}
	f := NewFileDispatcher(cfg, device, series, 0.1, testLogger())

	result, err := f.CreateSchedule(clock.TimePeriod{Start: 0, Duration: 3600})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Len())
	assert.Greater(t, result.ChargingPerPeriod[0], 0.0)
}

func TestFileDispatcher_UpdateForesightAlwaysFails(t *testing.T) {
	device := testDevice()
	f := NewFileDispatcher(Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}, device, constantSeries(t, 0), 0.1, testLogger())
	err := f.UpdateForesight(clock.TimePeriod{}, nil, nil)
	assert.ErrorIs(t, err, ErrFileDispatcherNoForecast)
}
