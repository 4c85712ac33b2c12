// Package tracker implements the package tracking store.
//
// # Overview
//
// A [Store] owns the ordered list of tracked package names together with
// three maps keyed by canonical name: the merged dataset, the request status
// and the last error message. Every key of the maps is also in the list.
//
// Actions ([Store.Add], [Store.Remove], [Store.InitializeFromQuery],
// [Store.Refresh], [Store.ClearError]) move each package through the status
// machine:
//
//	idle ──▶ loading ──▶ success
//	            │  ▲         │
//	            ▼  └─────────┘ (refresh)
//	          error
//
// A fetch-and-merge requests download counts and the release timeline
// concurrently, keeps the releases that fall inside the download period, and
// writes the merged [series.Dataset]. Failures become status error plus a
// message; a previous dataset is kept. Results for names removed while the
// fetch was in flight are discarded.
//
// At most one fetch-and-merge runs per name; concurrent callers share it.
//
// # Reading state
//
// [Store.State] returns an immutable snapshot. [Store.Subscribe] and
// [observe.Select] deliver changes. The functions [OrderedSeries],
// [Summaries], [IsAnyLoading] and [HasErrors] derive the views used by the
// CLI and HTTP API.
//
// [series.Dataset]: github.com/matzehuels/pkgtrack/pkg/series.Dataset
// [observe.Select]: github.com/matzehuels/pkgtrack/pkg/observe.Select
package tracker
