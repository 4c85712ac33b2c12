package querysync

import (
	"context"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

func TestParse(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{}},
		{"range=year", []string{}},
		{"packages=", []string{}},
		{"packages=react", []string{"react"}},
		{"?packages=React,vue,,REACT", []string{"react", "vue"}},
		{"packages=%40types%2Fnode,lodash", []string{"@types/node", "lodash"}},
		{"packages=%20Svelte%20", []string{"svelte"}},
		{"a=1&packages=x&b=2", []string{"x"}},
		{"packages=%zz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Parse(tt.query); !slices.Equal(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		packages []string
		want     string
	}{
		{"empty", "", nil, ""},
		{"packages only", "", []string{"react", "vue"}, "packages=react,vue"},
		{"replaces existing", "packages=old", []string{"react"}, "packages=react"},
		{"keeps other params", "range=year&packages=old&theme=dark", []string{"react"}, "range=year&theme=dark&packages=react"},
		{"drops param when empty", "range=year&packages=react", nil, "range=year"},
		{"encodes scoped names", "", []string{"@types/node"}, "packages=%40types%2Fnode"},
		{"re-encodes spaces", "q=a+b", nil, "q=a%20b"},
		{"leading question mark", "?range=year", []string{"x"}, "range=year&packages=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.query, tt.packages); got != tt.want {
				t.Errorf("Build(%q, %v) = %q, want %q", tt.query, tt.packages, got, tt.want)
			}
		})
	}
}

func TestBuildParseRoundTrip(t *testing.T) {
	packages := []string{"react", "@types/node", "lodash.merge"}
	if got := Parse(Build("range=year", packages)); !slices.Equal(got, packages) {
		t.Errorf("round trip = %v, want %v", got, packages)
	}
}

type stubSource[T any] struct {
	calls atomic.Int32
	fn    func(name string) (T, error)
}

func (s *stubSource[T]) Fetch(ctx context.Context, name string) (T, error) {
	s.calls.Add(1)
	return s.fn(name)
}

func (s *stubSource[T]) ClearCache(context.Context, string) error { return nil }

func newStore() (*tracker.Store, *stubSource[*series.Dataset]) {
	downloads := &stubSource[*series.Dataset]{fn: func(name string) (*series.Dataset, error) {
		return &series.Dataset{PackageName: name, Start: "2024-01-01", End: "2024-01-07"}, nil
	}}
	return tracker.New(tracker.Options{Downloads: downloads}), downloads
}

func TestSync(t *testing.T) {
	store, downloads := newStore()
	loc := NewMemoryLocation("?range=year&packages=React,vue,react")
	ctx := context.Background()

	stop, err := Sync(ctx, store, loc)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	defer stop()

	if got := store.State().Packages; !slices.Equal(got, []string{"react", "vue"}) {
		t.Fatalf("Packages = %v", got)
	}
	if downloads.calls.Load() != 2 {
		t.Errorf("download calls = %d, want 2", downloads.calls.Load())
	}
	if got := loc.Query(); got != "range=year&packages=react,vue" {
		t.Errorf("query after hydrate = %q", got)
	}

	_ = store.Add(ctx, "svelte")
	if got := loc.Query(); got != "range=year&packages=react,vue,svelte" {
		t.Errorf("query after add = %q", got)
	}

	store.Remove("react")
	store.Remove("vue")
	store.Remove("svelte")
	if got := loc.Query(); got != "range=year" {
		t.Errorf("query after removing all = %q", got)
	}

	stop()
	_ = store.Add(ctx, "lodash")
	if got := loc.Query(); got != "range=year" {
		t.Errorf("query changed after stop: %q", got)
	}
}

func TestSyncWithoutPackages(t *testing.T) {
	store, downloads := newStore()
	ctx := context.Background()
	_ = store.Add(ctx, "react")
	loc := NewMemoryLocation("")

	stop, err := Sync(ctx, store, loc)
	if err != nil {
		t.Fatalf("Sync() error: %v", err)
	}
	defer stop()

	if got := store.State().Packages; !slices.Equal(got, []string{"react"}) {
		t.Errorf("empty query must not reset the store: %v", got)
	}
	if downloads.calls.Load() != 1 {
		t.Errorf("download calls = %d, want 1", downloads.calls.Load())
	}
	if got := loc.Query(); got != "packages=react" {
		t.Errorf("query = %q, want the current list", got)
	}
}

func TestSyncCancelled(t *testing.T) {
	store, _ := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sync(ctx, store, NewMemoryLocation("packages=react"))
	if err == nil {
		t.Error("Sync() should report the cancelled context")
	}
}
