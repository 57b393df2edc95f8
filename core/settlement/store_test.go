package settlement

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gridflex/flexcore/core/clock"
)

func TestRecord_JSON(t *testing.T) {
	rec := Record{
		Timestamp:              time.Unix(0, 0),
		Period:                 clock.TimePeriod{Start: 0, Duration: 3600},
		AwardedPrice:           50,
		AwardedCumulativePower: 12,
		Awards:                 []Award{{TraderID: "storage-1", NetPowerMW: 10}},
	}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"timestamp", "period", "awarded_price_eur_per_mwh", "awarded_cumulative_power_mw", "awards"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
}

func TestNewRecord_ExtractsNonZeroAwards(t *testing.T) {
	limits := marketLimits()
	supply := newSupplyBook(limits, 10, limits.ScarcityPrice, "storage-1")
	demand := newDemandBook(limits, 10, limits.ScarcityPrice, "external-load")
	result := clearFor(t, supply, demand)

	rec := NewRecord(clock.TimePeriod{Start: 0, Duration: 3600}, result, []string{"storage-1", "external-load", "idle-trader"}, time.Now())
	if len(rec.Awards) != 2 {
		t.Fatalf("expected 2 non-zero awards, got %d: %+v", len(rec.Awards), rec.Awards)
	}
}
