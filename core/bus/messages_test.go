package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
)

func TestBidsAtTime_RoundTrip(t *testing.T) {
	original := BidsAtTime{
		Time: 3600,
		Bids: []market.Bid{
			{EnergyInMWH: 5, PriceInEURperMWH: 42.5, MarginalCostInEURperMWH: 30, Side: market.Supply, TraderID: "storage-1"},
			{EnergyInMWH: 2, PriceInEURperMWH: 12, Side: market.Demand, TraderID: "load-a"},
		},
	}
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded BidsAtTime
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original, decoded)
}

func TestAwardData_RoundTrip(t *testing.T) {
	original := AwardData{Time: 7200, AwardedSupplyPowerInMW: 3.5, AwardedDemandPowerInMW: 0, PowerPriceInEURperMWH: 55}
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded AwardData
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original, decoded)
}

func TestClearingTimes_RoundTrip(t *testing.T) {
	original := ClearingTimes{Times: []clock.TimeStamp{0, 3600, 7200}}
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded ClearingTimes
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original, decoded)
}

func TestPointInTime_RoundTrip(t *testing.T) {
	original := PointInTime{Time: 42, Value: 3.14}
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded PointInTime
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original, decoded)
}

func TestAmountAtTime_RoundTrip(t *testing.T) {
	original := AmountAtTime{Time: 99, AmountMWH: -4.2}
	data, err := original.MarshalBinary()
	require.NoError(t, err)

	var decoded AmountAtTime
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, original, decoded)
}

func TestBidsAtTime_UnmarshalRejectsWrongTag(t *testing.T) {
	award := AwardData{Time: 1}
	data, err := award.MarshalBinary()
	require.NoError(t, err)

	var decoded BidsAtTime
	assert.Error(t, decoded.UnmarshalBinary(data))
}
