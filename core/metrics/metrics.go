// Package metrics defines the events a market clearing loop reports and
// the sink interfaces that record them, grounded on the teacher's
// core/metrics MetricsSink hierarchy but re-keyed to clearing prices,
// awarded power, and dispatch/solve latency instead of vehicle dispatch
// acks.
package metrics

import (
	"time"

	"github.com/gridflex/flexcore/core/clock"
)

// ClearingEvent reports the outcome of one market clearing.
type ClearingEvent struct {
	Period                 clock.TimePeriod
	AwardedPrice           float64
	AwardedCumulativePower float64
	SupplyBidCount         int
	DemandBidCount         int
	Time                   time.Time
}

// AwardEvent reports what a single trader was awarded in one clearing.
type AwardEvent struct {
	TraderID   string
	Period     clock.TimePeriod
	NetPowerMW float64
	Time       time.Time
}

// StrategistSolveEvent reports how long a Strategist took to (re)plan and
// whether it succeeded.
type StrategistSolveEvent struct {
	TraderID string
	Kind     string
	Duration time.Duration
	Err      string
	Time     time.Time
}

// DispatchEvent reports the external power a Device actually realized
// after physical restrictions were applied to an awarded plan.
type DispatchEvent struct {
	TraderID       string
	RequestedMW    float64
	RealizedMW     float64
	EnergyLevelMWH float64
	Time           time.Time
}

// Config carries sink-specific connection settings decoded from a
// ModuleConfig by the registered factory.
type Config struct {
	PrometheusPort string
	InfluxURL      string
	InfluxToken    string
	InfluxOrg      string
	InfluxBucket   string
}

// MetricsSink is the minimal surface every sink implements.
type MetricsSink interface {
	RecordClearing(ClearingEvent) error
}

// AwardRecorder is implemented by sinks that track per-trader awards.
type AwardRecorder interface {
	RecordAward(AwardEvent) error
}

// StrategistSolveRecorder is implemented by sinks that track planning
// latency and failures.
type StrategistSolveRecorder interface {
	RecordStrategistSolve(StrategistSolveEvent) error
}

// DispatchRecorder is implemented by sinks that track realized dispatch.
type DispatchRecorder interface {
	RecordDispatch(DispatchEvent) error
}

// NopSink discards every event. It is the default sink and the fallback
// used when a configured sink cannot be reached.
type NopSink struct{}

func (NopSink) RecordClearing(ClearingEvent) error { return nil }

// SinkFactory builds a MetricsSink from raw configuration, used with the
// core/factory registry to select a sink by name at startup.
type SinkFactory func(map[string]any) (MetricsSink, error)

var registry = struct {
	factories map[string]SinkFactory
}{factories: make(map[string]SinkFactory)}

// RegisterMetricsSink adds a named sink constructor to the registry used
// by configuration-driven startup.
func RegisterMetricsSink(name string, f SinkFactory) error {
	if _, exists := registry.factories[name]; exists {
		return &duplicateSinkError{name: name}
	}
	registry.factories[name] = f
	return nil
}

// CreateMetricsSink instantiates the sink registered under name.
func CreateMetricsSink(name string, conf map[string]any) (MetricsSink, error) {
	f, ok := registry.factories[name]
	if !ok {
		return nil, &unknownSinkError{name: name}
	}
	return f(conf)
}

type duplicateSinkError struct{ name string }

func (e *duplicateSinkError) Error() string { return "metrics: sink already registered: " + e.name }

type unknownSinkError struct{ name string }

func (e *unknownSinkError) Error() string { return "metrics: unknown sink type: " + e.name }
