package metrics

import "testing"

func TestRegisterAndCreateMetricsSink(t *testing.T) {
	name := "test-sink-metrics"
	if err := RegisterMetricsSink(name, func(map[string]any) (MetricsSink, error) {
		return NopSink{}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	sink, err := CreateMetricsSink(name, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := sink.RecordClearing(ClearingEvent{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := RegisterMetricsSink(name, nil); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if _, err := CreateMetricsSink("does-not-exist", nil); err == nil {
		t.Fatal("expected unknown sink error")
	}
}
