package strategist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
)

func TestMaxProfitPriceImpact_ChargesOnCheapPeriodDischargesOnExpensive(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 2, PriceLimits: market.DefaultPriceLimits}
	s := NewMaxProfitPriceImpact(cfg, device, 5, 2)

	firstPeriod := clock.TimePeriod{Start: 0, Duration: 3600}
	require.NoError(t, s.UpdateForesight(firstPeriod, mustClearAt(t, 5), mustClearAt(t, 5)))
	require.NoError(t, s.UpdateForesight(firstPeriod.ShiftByDuration(1), mustClearAt(t, 500), mustClearAt(t, 500)))

	result, err := s.CreateSchedule(firstPeriod)
	require.NoError(t, err)
	require.Equal(t, 2, result.Len())

	assert.GreaterOrEqual(t, result.ChargingPerPeriod[0], 0.0)
	assert.LessOrEqual(t, result.ChargingPerPeriod[1], 0.0)
}

func TestMaxProfitPriceImpact_CalcBidPriceUsesSensitivityMarginalValue(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}
	s := NewMaxProfitPriceImpact(cfg, device, 5, 2)

	limits := market.DefaultPriceLimits
	supply := market.NewSupplyBook(limits)
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 5, PriceInEURperMWH: 30, MarginalCostInEURperMWH: 30, Side: market.Supply}))
	require.NoError(t, supply.AddBid(market.Bid{EnergyInMWH: 5, PriceInEURperMWH: 60, MarginalCostInEURperMWH: 60, Side: market.Supply}))
	demand := market.NewDemandBook(limits)
	result, err := market.Clear(supply, demand, market.FirstComeFirstServe, nil)
	require.NoError(t, err)

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	require.NoError(t, s.UpdateForesight(period, result.Supply, result.Demand))

	assert.InDelta(t, 30.0, s.calcBidPrice(period, 5), 1e-9, "charging into the cheap block prices at its own marginal value")
	assert.InDelta(t, 60.0, s.calcBidPrice(period, 10), 1e-9, "charging into the pricier block prices at its marginal value")
}

func TestMaxProfitPriceImpact_CalcBidPriceFallsBackToHardLimitsWithoutSensitivity(t *testing.T) {
	device := testDevice()
	cfg := Config{ScheduleDurationPeriods: 1, PriceLimits: market.DefaultPriceLimits}
	s := NewMaxProfitPriceImpact(cfg, device, 5, 2)

	period := clock.TimePeriod{Start: 0, Duration: 3600}
	assert.Equal(t, market.DefaultPriceLimits.ScarcityPrice, s.calcBidPrice(period, 5))
	assert.Equal(t, market.DefaultPriceLimits.MinimalPrice, s.calcBidPrice(period, -5))
}
