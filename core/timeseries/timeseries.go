// Package timeseries provides the TimeSeries capability every strategist
// and forecast-driven component reads from: a sparse set of (time, value)
// points queried by linear interpolation or step lookup. Grounded on
// de.dlr.gitlab.fame.data.TimeSeries as used throughout the original
// model's file-driven strategists (e.g. FileDispatcher.tsDispatch).
package timeseries

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/gridflex/flexcore/core/clock"
)

// Point is a single (time, value) sample.
type Point struct {
	Time  clock.TimeStamp
	Value float64
}

// TimeSeries is the abstract capability strategists depend on for
// forecasts and dispatch schedules read from external data, replacing a
// concrete file-reader type with an interface any backend can satisfy
// (spec.md §9 REDESIGN FLAG e).
type TimeSeries interface {
	// ValueLinear returns the linearly interpolated value at t, clamped to
	// the series' first/last value outside its domain.
	ValueLinear(t clock.TimeStamp) float64
	// ValueEarlierEqual returns the value of the latest sample at or
	// before t.
	ValueEarlierEqual(t clock.TimeStamp) float64
	// ValueLaterEqual returns the value of the earliest sample at or
	// after t.
	ValueLaterEqual(t clock.TimeStamp) float64
}

// InMemory is a TimeSeries backed by a sorted, in-process slice of points.
type InMemory struct {
	points []Point
	interp interp.FittedInterpolator
}

// NewInMemory builds an InMemory series from points, which need not be
// pre-sorted. It returns an error if no point is given or if two points
// share the same TimeStamp, whether or not their values differ, since the
// piecewise-linear fit needs strictly increasing times.
func NewInMemory(points []Point) (*InMemory, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("timeseries: at least one point is required")
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i] = float64(p.Time)
		ys[i] = p.Value
	}

	series := &InMemory{points: sorted}
	if len(sorted) == 1 {
		return series, nil
	}
	var fn interp.PiecewiseLinear
	if err := fn.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("timeseries: fit failed: %w", err)
	}
	series.interp = &fn
	return series, nil
}

func (s *InMemory) ValueLinear(t clock.TimeStamp) float64 {
	if len(s.points) == 1 {
		return s.points[0].Value
	}
	x := float64(t)
	first, last := s.points[0], s.points[len(s.points)-1]
	if x <= float64(first.Time) {
		return first.Value
	}
	if x >= float64(last.Time) {
		return last.Value
	}
	return s.interp.Predict(x)
}

func (s *InMemory) ValueEarlierEqual(t clock.TimeStamp) float64 {
	idx := sort.Search(len(s.points), func(i int) bool { return s.points[i].Time > t }) - 1
	if idx < 0 {
		return s.points[0].Value
	}
	return s.points[idx].Value
}

func (s *InMemory) ValueLaterEqual(t clock.TimeStamp) float64 {
	idx := sort.Search(len(s.points), func(i int) bool { return s.points[i].Time >= t })
	if idx >= len(s.points) {
		return s.points[len(s.points)-1].Value
	}
	return s.points[idx].Value
}
