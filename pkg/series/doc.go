// Package series holds the download and release data model and the pure
// transforms that produce it.
//
// # Overview
//
// Two upstream sources feed a [Dataset]:
//
//   - Raw daily download counts, reduced by [AggregateWeekly] into
//     full 7-day buckets. [NewDataset] derives the totals.
//   - A registry time map (version → publish timestamp), reduced by
//     [FilterReleases] into a sorted list of [Release] values.
//
// [Dataset.WithReleases] merges the two, keeping only releases published
// inside the dataset's period.
//
// # Charting
//
// [BuildChartData] lines several datasets up on a shared date axis and
// [Color] assigns each series a stable palette entry.
//
// All functions in this package are pure and safe for concurrent use.
// A Dataset is never mutated after construction; transforms return copies.
package series
