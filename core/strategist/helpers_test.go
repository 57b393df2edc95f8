package strategist

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/timeseries"
)

func constantSeries(t *testing.T, value float64) timeseries.TimeSeries {
	t.Helper()
	series, err := timeseries.NewInMemory([]timeseries.Point{
		{Time: 0, Value: value},
		{Time: 100000, Value: value},
	})
	if err != nil {
		t.Fatalf("failed to build constant series: %v", err)
	}
	return series
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
