package pricing

import (
	"gridhistory/internal/export"
)

// Merge left-joins an hourly price series onto the final table by hour
// timestamp. The existing Price column is dropped and rebuilt; hours
// without a matching price keep the 0.0 placeholder rather than being
// dropped. An empty series leaves the table unchanged.
func Merge(t *export.Table, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	byHour := make(map[int64]float64, len(points))
	for _, p := range points {
		byHour[p.Hour.Unix()] = p.Price
	}

	t.DropColumn("Price")
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		if price, ok := byHour[row.Timestamp.Unix()]; ok {
			values[i] = price
		}
	}
	return t.AddColumn("Price", values)
}
