package metrics

import (
	coremetrics "github.com/gridflex/flexcore/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records clearing, award, and dispatch events as Prometheus
// metrics. Grounded on the teacher's infra/metrics PromSink, re-keyed
// from dispatch acks to market clearing outcomes.
type PromSink struct {
	clearingPrice  *prometheus.GaugeVec
	clearingPower  *prometheus.GaugeVec
	awardedPower   *prometheus.GaugeVec
	dispatchDelta  *prometheus.GaugeVec
	strategistTime *prometheus.HistogramVec
}

// NewPromSink registers clearing metrics on the default Prometheus
// registerer. This module does not serve the registry over HTTP.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer. A
// nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	price := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "market_clearing_price_eur_per_mwh",
		Help: "Uniform price of the most recent market clearing",
	}, []string{})
	power := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "market_clearing_power_mw",
		Help: "Awarded cumulative power of the most recent market clearing",
	}, []string{})
	awarded := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trader_awarded_power_mw",
		Help: "Net power awarded to a trader in the most recent clearing",
	}, []string{"trader_id"})
	dispatch := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trader_dispatch_deviation_mw",
		Help: "Difference between requested and realized power for a trader",
	}, []string{"trader_id"})
	solve := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "strategist_solve_duration_seconds",
		Help:    "Time a Strategist takes to build a schedule",
		Buckets: prometheus.DefBuckets,
	}, []string{"trader_id", "kind"})

	for _, c := range []prometheus.Collector{price, power, awarded, dispatch, solve} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}

	return &PromSink{clearingPrice: price, clearingPower: power, awardedPower: awarded, dispatchDelta: dispatch, strategistTime: solve}, nil
}

// RecordClearing sets the clearing price and power gauges.
func (s *PromSink) RecordClearing(ev coremetrics.ClearingEvent) error {
	s.clearingPrice.WithLabelValues().Set(ev.AwardedPrice)
	s.clearingPower.WithLabelValues().Set(ev.AwardedCumulativePower)
	return nil
}

// RecordAward sets the per-trader awarded power gauge.
func (s *PromSink) RecordAward(ev coremetrics.AwardEvent) error {
	s.awardedPower.WithLabelValues(ev.TraderID).Set(ev.NetPowerMW)
	return nil
}

// RecordDispatch sets the per-trader dispatch deviation gauge.
func (s *PromSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	s.dispatchDelta.WithLabelValues(ev.TraderID).Set(ev.RealizedMW - ev.RequestedMW)
	return nil
}

// RecordStrategistSolve observes the strategist solve duration histogram.
func (s *PromSink) RecordStrategistSolve(ev coremetrics.StrategistSolveEvent) error {
	s.strategistTime.WithLabelValues(ev.TraderID, ev.Kind).Observe(ev.Duration.Seconds())
	return nil
}
