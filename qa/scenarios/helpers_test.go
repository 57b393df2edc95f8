package scenarios

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/core/clock"
)

// fixedSeries is a TimeSeries that reports the same value at every
// TimeStamp, used to drive the file dispatcher scenario without a CSV
// fixture on disk.
type fixedSeries struct {
	value float64
}

func newFixedSeries(value float64) *fixedSeries { return &fixedSeries{value: value} }

func (f *fixedSeries) ValueLinear(clock.TimeStamp) float64      { return f.value }
func (f *fixedSeries) ValueEarlierEqual(clock.TimeStamp) float64 { return f.value }
func (f *fixedSeries) ValueLaterEqual(clock.TimeStamp) float64   { return f.value }

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}
