package timeseries

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/gridflex/flexcore/core/clock"
)

// csvRow is the on-disk shape read via gocarina/gocsv, mirroring how
// AMIRIS scenario TimeSeries files pair a tick with a value column.
type csvRow struct {
	TimeStamp int64   `csv:"TimeStamp"`
	Value     float64 `csv:"Value"`
}

// LoadFile reads a two-column CSV file (TimeStamp, Value) into an
// InMemory TimeSeries. This is the file-backed implementation of the
// TimeSeries capability, used by strategists like FileDispatcher whose
// schedule is authored offline.
func LoadFile(path string) (*InMemory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, err
	}

	points := make([]Point, len(rows))
	for i, row := range rows {
		points[i] = Point{Time: clock.TimeStamp(row.TimeStamp), Value: row.Value}
	}
	return NewInMemory(points)
}
