package series

// bucketDays is the number of consecutive daily entries in one bucket.
const bucketDays = 7

// AggregateWeekly sums consecutive runs of seven daily entries into one
// DownloadPoint each. A trailing run shorter than seven days is dropped.
func AggregateWeekly(daily []DailyPoint) []DownloadPoint {
	points := make([]DownloadPoint, 0, len(daily)/bucketDays)

	var (
		start string
		sum   int64
		days  int
	)
	for _, p := range daily {
		if days == 0 {
			start = p.Day
		}
		sum += p.Downloads
		days++

		if days == bucketDays {
			points = append(points, DownloadPoint{Date: start, Downloads: sum})
			start, sum, days = "", 0, 0
		}
	}
	return points
}

// NewDataset builds a Dataset from a raw daily series.
//
// TotalDownloads is the sum of the emitted buckets, not of the raw days, so a
// dropped partial week does not count. LastDayDownloads is the value of the
// last raw daily entry regardless of bucketing.
func NewDataset(packageName, start, end string, daily []DailyPoint) *Dataset {
	points := AggregateWeekly(daily)

	var total int64
	for _, p := range points {
		total += p.Downloads
	}

	var lastDay int64
	if n := len(daily); n > 0 {
		lastDay = daily[n-1].Downloads
	}

	return &Dataset{
		PackageName:      packageName,
		Start:            start,
		End:              end,
		Points:           points,
		TotalDownloads:   total,
		LastDayDownloads: lastDay,
		Releases:         []Release{},
	}
}
