package tracker

import (
	"maps"
	"slices"

	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/series"
)

// Status is the request state of one tracked package.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a snapshot of the store. Snapshots are never mutated after they
// are published; treat every field as read-only.
type State struct {
	Packages []string                   `json:"packages"`
	Datasets map[string]*series.Dataset `json:"datasets"`
	Status   map[string]Status          `json:"status"`
	Errors   map[string]string          `json:"errors"`
}

// NewState returns an empty state.
func NewState() State {
	return State{
		Packages: []string{},
		Datasets: map[string]*series.Dataset{},
		Status:   map[string]Status{},
		Errors:   map[string]string{},
	}
}

// Tracked reports whether the canonical name is in the package list.
func (s State) Tracked(name string) bool {
	return slices.Contains(s.Packages, name)
}

// clone returns a copy whose slice and maps may be modified freely.
func (s State) clone() State {
	return State{
		Packages: slices.Clone(s.Packages),
		Datasets: cloneMap(s.Datasets),
		Status:   cloneMap(s.Status),
		Errors:   cloneMap(s.Errors),
	}
}

// without returns a copy with name removed from every slot.
func (s State) without(name string) State {
	next := s.clone()
	next.Packages = slices.DeleteFunc(next.Packages, func(p string) bool { return p == name })
	delete(next.Datasets, name)
	delete(next.Status, name)
	delete(next.Errors, name)
	return next
}

func cloneMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return map[string]V{}
	}
	return maps.Clone(m)
}

// NormalizeAll canonicalizes names, dropping empty entries and later
// duplicates. Order of first occurrence is preserved.
func NormalizeAll(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		name := integrations.NormalizePkgName(r)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
