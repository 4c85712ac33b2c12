package tracker

import (
	"slices"

	"github.com/matzehuels/pkgtrack/pkg/observe"
	"github.com/matzehuels/pkgtrack/pkg/series"
)

// Summary is the per-package view used by listings: the dataset fields
// merged with the request status and error message.
type Summary struct {
	series.Dataset
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// OrderedSeries returns the datasets of tracked packages in display order,
// skipping packages that have none yet.
func OrderedSeries(s State) []*series.Dataset {
	out := make([]*series.Dataset, 0, len(s.Packages))
	for _, name := range s.Packages {
		if ds := s.Datasets[name]; ds != nil {
			out = append(out, ds)
		}
	}
	return out
}

// Summaries returns one summary per tracked package in display order.
// Packages without data get an empty dataset; a missing status reads as idle.
func Summaries(s State) []Summary {
	out := make([]Summary, 0, len(s.Packages))
	for _, name := range s.Packages {
		out = append(out, summarize(s, name))
	}
	return out
}

// SummaryOf returns the summary of one package, or false if it is not tracked.
func SummaryOf(s State, name string) (Summary, bool) {
	if !s.Tracked(name) {
		return Summary{}, false
	}
	return summarize(s, name), true
}

func summarize(s State, name string) Summary {
	ds := s.Datasets[name]
	if ds == nil {
		ds = series.Empty(name)
	}
	status, ok := s.Status[name]
	if !ok {
		status = StatusIdle
	}
	return Summary{
		Dataset: *ds,
		Status:  status,
		Error:   s.Errors[name],
	}
}

// IsAnyLoading reports whether any tracked package is loading.
func IsAnyLoading(s State) bool {
	return slices.ContainsFunc(s.Packages, func(name string) bool {
		return s.Status[name] == StatusLoading
	})
}

// HasErrors reports whether any tracked package has an error message.
func HasErrors(s State) bool {
	return slices.ContainsFunc(s.Packages, func(name string) bool {
		return s.Errors[name] != ""
	})
}

// SelectPackages calls fn with the package list whenever it changes.
func SelectPackages(s *Store, fn func(packages []string)) (unsubscribe func()) {
	return observe.Select(s.Observable(),
		func(st State) []string { return st.Packages },
		func(a, b []string) bool { return slices.Equal(a, b) },
		fn,
	)
}
