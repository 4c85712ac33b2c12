package series

import "slices"

// ChartRow is one x-axis position of a multi-series chart: the bucket date
// and the downloads of every package that has a bucket on that date.
type ChartRow struct {
	Date   string           `json:"date"`
	Values map[string]int64 `json:"values"`
}

// BuildChartData lines up the points of several datasets on a shared date
// axis. Rows are sorted ascending by date; a package missing a bucket on a
// given date is simply absent from that row's Values.
func BuildChartData(datasets []*Dataset) []ChartRow {
	rows := make(map[string]map[string]int64)
	for _, d := range datasets {
		for _, p := range d.Points {
			values, ok := rows[p.Date]
			if !ok {
				values = make(map[string]int64)
				rows[p.Date] = values
			}
			values[d.PackageName] = p.Downloads
		}
	}

	dates := make([]string, 0, len(rows))
	for date := range rows {
		dates = append(dates, date)
	}
	slices.Sort(dates)

	out := make([]ChartRow, 0, len(dates))
	for _, date := range dates {
		out = append(out, ChartRow{Date: date, Values: rows[date]})
	}
	return out
}

// Palette is the ordered list of series colors.
var Palette = []string{
	"#8EF2FF",
	"#F6C177",
	"#F78EA7",
	"#7EE0A3",
	"#C3A6FF",
	"#FF8674",
	"#5CD6FF",
	"#FFB347",
	"#8AE6C3",
}

// Color returns the palette color for the series at index i, wrapping around.
func Color(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
