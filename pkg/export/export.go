// Package export renders settlement records to the on-disk formats an
// operator or downstream analytics pipeline consumes: JSON for programmatic
// reuse, CSV for spreadsheets.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/gridflex/flexcore/core/settlement"
)

// awardRow is one trader's award within a clearing record, flattened into
// gocsv's tag-driven row shape.
type awardRow struct {
	Timestamp    time.Time `csv:"timestamp"`
	AwardedPrice float64   `csv:"awarded_price_eur_per_mwh"`
	TraderID     string    `csv:"trader_id"`
	NetPowerMW   float64   `csv:"net_power_mw"`
}

// WriteJSON writes records to w as a JSON array, one object per clearing
// record with its nested per-trader awards.
func WriteJSON(w io.Writer, records []settlement.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes records to w as a flat CSV, one row per trader award.
// A clearing record with no non-zero awards contributes no rows.
func WriteCSV(w io.Writer, records []settlement.Record) error {
	rows := make([]awardRow, 0, len(records))
	for _, rec := range records {
		for _, award := range rec.Awards {
			rows = append(rows, awardRow{
				Timestamp:    rec.Timestamp,
				AwardedPrice: rec.AwardedPrice,
				TraderID:     award.TraderID,
				NetPowerMW:   award.NetPowerMW,
			})
		}
	}
	return gocsv.Marshal(rows, w)
}
