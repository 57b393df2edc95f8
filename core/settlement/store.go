// Package settlement persists the outcome of every market clearing —
// awarded prices and per-trader awards — for later audit and export.
// Grounded on the teacher's core/dispatch/logging package: same
// JSONL/rotating-JSONL/SQLite store triad, re-keyed from dispatch
// decisions to clearing records.
package settlement

import (
	"context"
	"time"

	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/core/market"
)

// Award captures one trader's net result within a clearing.
type Award struct {
	TraderID   string  `json:"trader_id"`
	NetPowerMW float64 `json:"net_power_mw"`
}

// Record captures one market clearing and every trader's award from it.
type Record struct {
	Timestamp              time.Time      `json:"timestamp"`
	Period                 clock.TimePeriod `json:"period"`
	AwardedPrice           float64        `json:"awarded_price_eur_per_mwh"`
	AwardedCumulativePower float64        `json:"awarded_cumulative_power_mw"`
	Awards                 []Award        `json:"awards"`
}

// NewRecord builds a Record from a completed clearing, extracting each
// named trader's net award (demand bought minus supply sold).
func NewRecord(period clock.TimePeriod, result *market.ClearingResult, traderIDs []string, at time.Time) Record {
	rec := Record{
		Timestamp:              at,
		Period:                 period,
		AwardedPrice:           result.AwardedPrice,
		AwardedCumulativePower: result.AwardedCumulativePower,
	}
	for _, id := range traderIDs {
		net := result.Demand.TraderPower(id) - result.Supply.TraderPower(id)
		if net == 0 {
			continue
		}
		rec.Awards = append(rec.Awards, Award{TraderID: id, NetPowerMW: net})
	}
	return rec
}

// Query filters records retrieved from a Store.
type Query struct {
	Start     time.Time
	End       time.Time
	TraderID  string
}

// Store persists and retrieves Records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

func matchesQuery(r Record, q Query) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.TraderID != "" {
		for _, a := range r.Awards {
			if a.TraderID == q.TraderID {
				return true
			}
		}
		return false
	}
	return true
}
