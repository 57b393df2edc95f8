package metrics

import (
	"context"
	"time"

	"github.com/gridflex/flexcore/core/events"
	coremetrics "github.com/gridflex/flexcore/core/metrics"
	"github.com/gridflex/flexcore/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// clearing, award, and strategy events. It stops when the context is
// canceled. Grounded on the teacher's infra/metrics StartEventCollector.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.ClearingEvent:
					_ = sink.RecordClearing(coremetrics.ClearingEvent{
						Period:                 e.Period,
						AwardedPrice:           e.AwardedPrice,
						AwardedCumulativePower: e.AwardedCumulativePower,
						Time:                   time.Now(),
					})
				case events.AwardEvent:
					if r, ok := sink.(coremetrics.AwardRecorder); ok {
						_ = r.RecordAward(coremetrics.AwardEvent{
							TraderID:   e.TraderID,
							Period:     e.Period,
							NetPowerMW: e.NetPowerMW,
							Time:       time.Now(),
						})
					}
				case events.StrategyEvent:
					if r, ok := sink.(coremetrics.StrategistSolveRecorder); ok {
						errStr := ""
						if e.Err != nil {
							errStr = e.Err.Error()
						}
						_ = r.RecordStrategistSolve(coremetrics.StrategistSolveEvent{
							TraderID: e.TraderID,
							Kind:     e.Kind,
							Duration: e.Duration,
							Err:      errStr,
							Time:     time.Now(),
						})
					}
				}
			}
		}
	}()
}
