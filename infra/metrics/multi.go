package metrics

import coremetrics "github.com/gridflex/flexcore/core/metrics"

// MultiSink fans a clearing loop's events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordClearing forwards the event to every sink, returning the first error.
func (m *MultiSink) RecordClearing(ev coremetrics.ClearingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordClearing(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordAward forwards the event to sinks that implement AwardRecorder.
func (m *MultiSink) RecordAward(ev coremetrics.AwardEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.AwardRecorder); ok {
			if err := rec.RecordAward(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDispatch forwards the event to sinks that implement DispatchRecorder.
func (m *MultiSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.DispatchRecorder); ok {
			if err := rec.RecordDispatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStrategistSolve forwards the event to sinks that implement
// StrategistSolveRecorder.
func (m *MultiSink) RecordStrategistSolve(ev coremetrics.StrategistSolveEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.StrategistSolveRecorder); ok {
			if err := rec.RecordStrategistSolve(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
