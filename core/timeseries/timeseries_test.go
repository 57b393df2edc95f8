package timeseries

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridflex/flexcore/core/clock"
)

func TestInMemory_ValueLinearInterpolates(t *testing.T) {
	series, err := NewInMemory([]Point{
		{Time: 0, Value: 0},
		{Time: 10, Value: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, series.ValueLinear(5))
}

func TestInMemory_ValueLinearClampsOutsideDomain(t *testing.T) {
	series, err := NewInMemory([]Point{
		{Time: 0, Value: 1},
		{Time: 10, Value: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, series.ValueLinear(-5))
	assert.Equal(t, 2.0, series.ValueLinear(50))
}

func TestInMemory_ValueEarlierEqual(t *testing.T) {
	series, err := NewInMemory([]Point{
		{Time: 0, Value: 1},
		{Time: 10, Value: 2},
		{Time: 20, Value: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, series.ValueEarlierEqual(15))
	assert.Equal(t, 1.0, series.ValueEarlierEqual(0))
}

func TestInMemory_ValueLaterEqual(t *testing.T) {
	series, err := NewInMemory([]Point{
		{Time: 0, Value: 1},
		{Time: 10, Value: 2},
		{Time: 20, Value: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, series.ValueLaterEqual(5))
	assert.Equal(t, 3.0, series.ValueLaterEqual(20))
}

func TestNewInMemory_RejectsEmpty(t *testing.T) {
	_, err := NewInMemory(nil)
	assert.Error(t, err)
}

func TestInMemory_SinglePointIsConstant(t *testing.T) {
	series, err := NewInMemory([]Point{{Time: 5, Value: 7}})
	require.NoError(t, err)
	assert.Equal(t, 7.0, series.ValueLinear(clock.TimeStamp(999)))
}
