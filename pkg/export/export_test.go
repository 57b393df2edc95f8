package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gridflex/flexcore/core/settlement"
)

func sampleRecords() []settlement.Record {
	return []settlement.Record{
		{
			Timestamp:              time.Unix(0, 0).UTC(),
			AwardedPrice:           45.5,
			AwardedCumulativePower: 12,
			Awards: []settlement.Award{
				{TraderID: "storage-1", NetPowerMW: 5},
				{TraderID: "storage-2", NetPowerMW: -3},
			},
		},
		{
			Timestamp:    time.Unix(3600, 0).UTC(),
			AwardedPrice: 50,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("write json: %v", err)
	}
	if !strings.Contains(buf.String(), "storage-1") {
		t.Fatalf("expected trader id in output, got %s", buf.String())
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// header + two award rows; the second record has no awards.
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
	if !strings.Contains(lines[0], "trader_id") {
		t.Fatalf("expected header row, got %s", lines[0])
	}
}
