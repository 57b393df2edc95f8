package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/gridflex/flexcore/core/metrics"
	"github.com/gridflex/flexcore/infra/logger"
)

// InfluxSink writes clearing, award, dispatch, and strategist-solve
// events to an InfluxDB instance. Grounded on the teacher's infra/metrics
// InfluxSink.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordClearing writes the market clearing outcome as a point.
func (s *InfluxSink) RecordClearing(ev coremetrics.ClearingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("market_clearing").
		AddField("price_eur_per_mwh", round3(ev.AwardedPrice)).
		AddField("power_mw", round3(ev.AwardedCumulativePower)).
		AddField("supply_bids", ev.SupplyBidCount).
		AddField("demand_bids", ev.DemandBidCount).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAward writes a per-trader award as a point.
func (s *InfluxSink) RecordAward(ev coremetrics.AwardEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trader_award").
		AddTag("trader_id", ev.TraderID).
		AddField("net_power_mw", round3(ev.NetPowerMW)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDispatch writes a realized dispatch as a point.
func (s *InfluxSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trader_dispatch").
		AddTag("trader_id", ev.TraderID).
		AddField("requested_mw", round3(ev.RequestedMW)).
		AddField("realized_mw", round3(ev.RealizedMW)).
		AddField("energy_level_mwh", round3(ev.EnergyLevelMWH)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStrategistSolve writes a strategist planning attempt as a point.
func (s *InfluxSink) RecordStrategistSolve(ev coremetrics.StrategistSolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("strategist_solve").
		AddTag("trader_id", ev.TraderID).
		AddTag("kind", ev.Kind).
		AddField("duration_ms", round3(float64(ev.Duration.Milliseconds()))).
		AddField("error", ev.Err).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
