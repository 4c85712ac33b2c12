// Package querysync keeps a tracked-package list in a URL query string.
//
// The list is stored in the "packages" parameter as comma-separated,
// percent-encoded canonical names:
//
//	?range=year&packages=react,vue,%40types%2Fnode
//
// [Parse] and [Build] convert between the two forms; [Sync] hydrates a
// tracking store from a [Location] once and then mirrors every change of
// the package list back into it.
package querysync

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// Key is the query parameter holding the package list.
const Key = "packages"

// Parse returns the canonical, de-duplicated package names from rawQuery.
// A leading "?" is ignored. Malformed queries yield no packages.
func Parse(rawQuery string) []string {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return []string{}
	}
	v := values.Get(Key)
	if v == "" {
		return []string{}
	}
	return tracker.NormalizeAll(strings.Split(v, ","))
}

// Build rewrites rawQuery so its package parameter lists packages. Other
// parameters keep their order; the package parameter goes last and is
// omitted when packages is empty.
func Build(rawQuery string, packages []string) string {
	var segments []string
	for _, part := range strings.Split(strings.TrimPrefix(rawQuery, "?"), "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key := unescape(k)
		if key == Key {
			continue
		}
		segments = append(segments, escape(key)+"="+escape(unescape(v)))
	}

	if len(packages) > 0 {
		encoded := make([]string, len(packages))
		for i, p := range packages {
			encoded[i] = escape(p)
		}
		segments = append(segments, Key+"="+strings.Join(encoded, ","))
	}
	return strings.Join(segments, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func unescape(s string) string {
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// Location is an external place holding a query string, such as a browser
// URL, a shareable link or a config entry.
type Location interface {
	Query() string
	Replace(query string)
}

// Sync hydrates store from loc and then keeps loc updated.
//
// When loc lists packages, Sync calls InitializeFromQuery and waits for it.
// Afterwards every change of the package list is written back through
// Build, skipping writes that would not change the query. The returned stop
// function ends the mirroring.
func Sync(ctx context.Context, store *tracker.Store, loc Location) (stop func(), err error) {
	if names := Parse(loc.Query()); len(names) > 0 {
		if err := store.InitializeFromQuery(ctx, names); err != nil {
			return nil, err
		}
	}

	write := func(packages []string) {
		current := loc.Query()
		if next := Build(current, packages); next != current {
			loc.Replace(next)
		}
	}
	stop = tracker.SelectPackages(store, write)
	write(store.State().Packages)
	return stop, nil
}

// MemoryLocation is a Location held in memory. It is safe for concurrent use.
type MemoryLocation struct {
	mu    sync.RWMutex
	query string
}

// NewMemoryLocation creates a location holding query.
func NewMemoryLocation(query string) *MemoryLocation {
	return &MemoryLocation{query: strings.TrimPrefix(query, "?")}
}

// Query implements Location.
func (l *MemoryLocation) Query() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.query
}

// Replace implements Location.
func (l *MemoryLocation) Replace(query string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = query
}
