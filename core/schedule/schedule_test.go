package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
)

func TestBidSchedule_ChargingAt(t *testing.T) {
	period := clock.TimePeriod{Start: 0, Duration: 3600}
	s := New(period, 3)
	s.ChargingPerPeriod[1] = 5
	s.BidPriceInEURperMWH[1] = 42

	power, price, err := s.ChargingAt(3600)
	require.NoError(t, err)
	assert.Equal(t, 5.0, power)
	assert.Equal(t, 42.0, price)
}

func TestBidSchedule_ChargingAtOutOfRange(t *testing.T) {
	s := New(clock.TimePeriod{Start: 0, Duration: 3600}, 2)
	_, _, err := s.ChargingAt(7200)
	assert.ErrorIs(t, err, ErrScheduleExhausted)
}

func TestBidSchedule_IsApplicableWithinTolerance(t *testing.T) {
	s := New(clock.TimePeriod{Start: 0, Duration: 3600}, 2)
	s.ExpectedInitialEnergyInMWH[0] = 10
	assert.True(t, s.IsApplicable(0, 10.05, 0.1))
	assert.False(t, s.IsApplicable(0, 10.5, 0.1))
}

func TestBidSchedule_IsApplicableOutsideWindow(t *testing.T) {
	s := New(clock.TimePeriod{Start: 0, Duration: 3600}, 2)
	assert.False(t, s.IsApplicable(-1, 0, 1))
	assert.False(t, s.IsApplicable(7200, 0, 1))
}
