// Package app wires the configured traders, market and settlement store
// into a runnable simulation, the way the teacher's app package wires a
// dispatch manager and its connectors.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gridflex/flexcore/config"
	"github.com/gridflex/flexcore/core/bus"
	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/events"
	"github.com/gridflex/flexcore/core/market"
	coremetrics "github.com/gridflex/flexcore/core/metrics"
	"github.com/gridflex/flexcore/core/settlement"
	"github.com/gridflex/flexcore/core/storage"
	"github.com/gridflex/flexcore/core/strategist"
	"github.com/gridflex/flexcore/core/trader"
	"github.com/gridflex/flexcore/infra/logger"
	"github.com/gridflex/flexcore/infra/metrics"
	"github.com/gridflex/flexcore/infra/mqtt"
	"github.com/gridflex/flexcore/internal/eventbus"
)

// Simulation runs a merit-order market over a sequence of periods,
// clearing the bids its traders submit and feeding awards back to their
// devices. Grounded on the teacher's app.Service, generalized from a
// live dispatch loop to a discrete-event clearing loop.
type Simulation struct {
	limits   market.PriceLimits
	method   market.DistributionMethod
	traders  []*trader.Trader
	store    settlement.Store
	sink     coremetrics.MetricsSink
	bus      eventbus.EventBus
	mqttConn *mqtt.PahoClient
	log      logger.Logger
	rng      *rand.Rand
}

// New builds a Simulation from cfg: one Device+Strategist+Trader per
// configured trader, the aggregate metrics sink, and the settlement
// store its clearing records are appended to.
func New(cfg *config.Config) (*Simulation, error) {
	logg := logger.New("simulation")

	traders := make([]*trader.Trader, 0, len(cfg.Traders))
	for _, tc := range cfg.Traders {
		device := storage.NewDevice(tc.Device)
		strat, err := strategist.Build(tc.Strategist, strategist.BuildParams{
			Device:                 device,
			DispatchToleranceInMWH: tc.DispatchToleranceInMWH,
			Log:                    zerolog.New(os.Stdout).With().Timestamp().Str("trader", tc.ID).Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("build strategist for trader %s: %w", tc.ID, err)
		}
		traders = append(traders, trader.New(tc.ID, device, strat, tc.DispatchToleranceInMWH,
			zerolog.New(os.Stdout).With().Timestamp().Str("trader", tc.ID).Logger()))
	}

	var sinks []coremetrics.MetricsSink
	for _, sc := range cfg.Sinks {
		sink, err := coremetrics.CreateMetricsSink(sc.Type, sc.Conf)
		if err != nil {
			return nil, fmt.Errorf("create metrics sink %s: %w", sc.Type, err)
		}
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store, err := cfg.Settlement.Build()
	if err != nil {
		return nil, fmt.Errorf("open settlement store: %w", err)
	}

	evBus := eventbus.New()

	var mqttConn *mqtt.PahoClient
	if cfg.MQTT.Broker != "" {
		mqttCfg := cfg.MQTT
		if mqttCfg.ClientID == "" {
			mqttCfg.ClientID = "flexcore-" + uuid.NewString()
		}
		mqttConn, err = mqtt.NewPahoClient(mqttCfg)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
	}

	limits := cfg.Market.PriceLimits()
	method, err := cfg.Market.Method()
	if err != nil {
		return nil, err
	}

	return &Simulation{
		limits:   limits,
		method:   method,
		traders:  traders,
		store:    store,
		sink:     sink,
		bus:      evBus,
		mqttConn: mqttConn,
		log:      logg,
		rng:      rand.New(rand.NewSource(1)),
	}, nil
}

// Run clears periods consecutive periods of duration step starting at
// start, publishing clearing/award events to the bus and appending a
// settlement record after each clearing. It stops early if ctx is
// cancelled.
func (s *Simulation) Run(ctx context.Context, start clock.TimeStamp, step clock.Duration, periods int) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	traderIDs := make([]string, len(s.traders))
	for i, t := range s.traders {
		traderIDs[i] = t.ID()
	}

	period := clock.TimePeriod{Start: start, Duration: step}
	for i := 0; i < periods; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.clearOne(period, traderIDs); err != nil {
			return fmt.Errorf("clear period %d: %w", i, err)
		}
		period = period.ShiftByDuration(1)
	}
	return nil
}

func (s *Simulation) clearOne(period clock.TimePeriod, traderIDs []string) error {
	supply := market.NewSupplyBook(s.limits)
	demand := market.NewDemandBook(s.limits)

	for _, t := range s.traders {
		bids, err := t.BidsFor(period.Start, period)
		if err != nil {
			s.bus.Publish(events.StrategyEvent{TraderID: t.ID(), Kind: "create_schedule", Err: err})
			return fmt.Errorf("bids for trader %s: %w", t.ID(), err)
		}
		s.bus.Publish(events.BidEvent{TraderID: t.ID(), Bids: bids})
		for _, bid := range bids {
			book := supply
			if bid.Side == market.Demand {
				book = demand
			}
			if err := book.AddBid(bid); err != nil {
				return fmt.Errorf("add bid for trader %s: %w", t.ID(), err)
			}
		}
	}

	result, err := market.Clear(supply, demand, s.method, s.rng)
	if err != nil {
		return err
	}
	s.bus.Publish(events.ClearingEvent{
		Period:                 period,
		AwardedPrice:           result.AwardedPrice,
		AwardedCumulativePower: result.AwardedCumulativePower,
	})

	for _, t := range s.traders {
		netPower := t.ApplyAward(period.Start, result)
		s.bus.Publish(events.AwardEvent{TraderID: t.ID(), Period: period, NetPowerMW: netPower})
		if err := t.UpdateForesight(period, result); err != nil && err != strategist.ErrFileDispatcherNoForecast {
			s.log.Warnf("update foresight for trader %s: %v", t.ID(), err)
		}
		if s.mqttConn != nil {
			if err := s.mqttConn.PublishAward(t.ID(), awardData(result, t.ID(), period)); err != nil {
				s.log.Warnf("publish award for trader %s: %v", t.ID(), err)
			}
		}
	}

	rec := settlement.NewRecord(period, result, traderIDs, time.Unix(int64(period.Start), 0).UTC())
	if err := s.store.Append(context.Background(), rec); err != nil {
		return fmt.Errorf("append settlement record: %w", err)
	}
	return nil
}

// awardData builds the wire message reporting traderID's award for
// period back to it over MQTT.
func awardData(result *market.ClearingResult, traderID string, period clock.TimePeriod) bus.AwardData {
	return bus.AwardData{
		Time:                   period.Start,
		AwardedSupplyPowerInMW: result.Supply.TraderPower(traderID),
		AwardedDemandPowerInMW: result.Demand.TraderPower(traderID),
		PowerPriceInEURperMWH:  result.AwardedPrice,
	}
}

// Close releases the resources the Simulation holds open.
func (s *Simulation) Close() error {
	s.bus.Close()
	if s.mqttConn != nil {
		s.mqttConn.Disconnect()
	}
	return s.store.Close()
}
