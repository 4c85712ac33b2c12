package tracker

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/observe"
	"github.com/matzehuels/pkgtrack/pkg/series"
)

// fallbackMessage is recorded when a failure carries no message.
const fallbackMessage = "Failed to load package downloads"

// Source is a cached, coalescing data source such as *fetch.Coordinator.
type Source[T any] interface {
	Fetch(ctx context.Context, name string) (T, error)
	ClearCache(ctx context.Context, name string) error
}

// Options configures a Store.
type Options struct {
	// Downloads provides download datasets. Required.
	Downloads Source[*series.Dataset]

	// Releases provides release timelines. When nil, datasets carry no releases.
	Releases Source[[]series.Release]

	// Logger receives state transitions. Defaults to log.Default().
	Logger *log.Logger
}

// Store is the package tracking store. Create isolated instances with New.
type Store struct {
	state     *observe.Store[State]
	downloads Source[*series.Dataset]
	releases  Source[[]series.Release]
	logger    *log.Logger

	inflight singleflight.Group
	wg       sync.WaitGroup
}

// New creates an empty store.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Store{
		state:     observe.New(NewState()),
		downloads: opts.Downloads,
		releases:  opts.Releases,
		logger:    opts.Logger,
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	return s.state.Get()
}

// Subscribe registers a listener for state changes. Listeners run on the
// goroutine that applied the change and must not call store actions
// synchronously.
func (s *Store) Subscribe(l observe.Listener[State]) (unsubscribe func()) {
	return s.state.Subscribe(l)
}

// Observable exposes the underlying observable for use with observe.Select.
func (s *Store) Observable() *observe.Store[State] {
	return s.state
}

// Add starts tracking a package and returns once its first fetch has
// settled. Empty and already tracked names are ignored.
//
// Provider failures are recorded in state and never returned; the only
// error is ctx.Err() when ctx ends before the fetch settles.
func (s *Store) Add(ctx context.Context, raw string) error {
	name := integrations.NormalizePkgName(raw)
	if name == "" {
		return nil
	}

	_, added := s.state.Update(func(st State) (State, bool) {
		if st.Tracked(name) {
			return st, false
		}
		next := st.clone()
		next.Packages = append(next.Packages, name)
		next.Status[name] = StatusIdle
		return next, true
	})
	if !added {
		return nil
	}
	s.logger.Info("tracking package", "package", name)
	return s.run(ctx, name)
}

// Remove stops tracking a package. A fetch still in flight for it finishes
// but its result is discarded.
func (s *Store) Remove(raw string) {
	name := integrations.NormalizePkgName(raw)
	if name == "" {
		return
	}
	_, removed := s.state.Update(func(st State) (State, bool) {
		if !st.Tracked(name) {
			return st, false
		}
		return st.without(name), true
	})
	if removed {
		s.logger.Info("untracked package", "package", name)
	}
}

// InitializeFromQuery replaces the tracked list with the canonical,
// de-duplicated form of raw. Entries of packages that stay tracked are kept;
// every package without a dataset is fetched. It returns once all started
// fetches have settled.
func (s *Store) InitializeFromQuery(ctx context.Context, raw []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	names := NormalizeAll(raw)

	var missing []string
	s.state.Update(func(st State) (State, bool) {
		next := State{
			Packages: names,
			Datasets: make(map[string]*series.Dataset, len(names)),
			Status:   make(map[string]Status, len(names)),
			Errors:   make(map[string]string),
		}
		missing = missing[:0]
		for _, name := range names {
			if ds, ok := st.Datasets[name]; ok {
				next.Datasets[name] = ds
			} else {
				missing = append(missing, name)
			}
			if status, ok := st.Status[name]; ok {
				next.Status[name] = status
			} else {
				next.Status[name] = StatusIdle
			}
			if msg, ok := st.Errors[name]; ok {
				next.Errors[name] = msg
			}
		}
		return next, true
	})

	s.logger.Debug("initialized from query", "packages", len(names), "fetching", len(missing))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range missing {
		g.Go(func() error {
			return s.run(gctx, name)
		})
	}
	return g.Wait()
}

// Refresh runs a new fetch-and-merge for a tracked package. Cached
// coordinator results are reused; use RefreshFresh to hit the providers.
func (s *Store) Refresh(ctx context.Context, raw string) error {
	name := integrations.NormalizePkgName(raw)
	if name == "" || !s.State().Tracked(name) {
		return nil
	}
	return s.run(ctx, name)
}

// RefreshFresh clears the cached results of a tracked package in both
// sources before refreshing it.
func (s *Store) RefreshFresh(ctx context.Context, raw string) error {
	name := integrations.NormalizePkgName(raw)
	if name == "" || !s.State().Tracked(name) {
		return nil
	}
	if err := s.downloads.ClearCache(ctx, name); err != nil {
		s.logger.Warn("clear downloads cache", "package", name, "error", err)
	}
	if s.releases != nil {
		if err := s.releases.ClearCache(ctx, name); err != nil {
			s.logger.Warn("clear releases cache", "package", name, "error", err)
		}
	}
	return s.run(ctx, name)
}

// ClearError removes the error message of a package, leaving its status and
// dataset untouched.
func (s *Store) ClearError(raw string) {
	name := integrations.NormalizePkgName(raw)
	if name == "" {
		return
	}
	s.state.Update(func(st State) (State, bool) {
		if _, ok := st.Errors[name]; !ok {
			return st, false
		}
		next := st.clone()
		delete(next.Errors, name)
		return next, true
	})
}

// Wait blocks until every fetch-and-merge started so far has settled,
// including those whose callers stopped waiting.
func (s *Store) Wait() {
	s.wg.Wait()
}

// run joins or starts the fetch-and-merge for name and waits for it.
func (s *Store) run(ctx context.Context, name string) error {
	s.wg.Add(1)
	ch := s.inflight.DoChan(name, func() (any, error) {
		s.fetchAndMerge(context.WithoutCancel(ctx), name)
		return nil, nil
	})
	done := make(chan struct{})
	go func() {
		<-ch
		s.wg.Done()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) fetchAndMerge(ctx context.Context, name string) {
	_, started := s.state.Update(func(st State) (State, bool) {
		if !st.Tracked(name) {
			return st, false
		}
		next := st.clone()
		next.Status[name] = StatusLoading
		delete(next.Errors, name)
		return next, true
	})
	if !started {
		return
	}

	var (
		ds       *series.Dataset
		releases []series.Release
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = s.downloads.Fetch(gctx, name)
		return err
	})
	if s.releases != nil {
		g.Go(func() error {
			var err error
			releases, err = s.releases.Fetch(gctx, name)
			return err
		})
	}
	err := g.Wait()
	if err == nil && ds == nil {
		ds = series.Empty(name)
	}

	_, written := s.state.Update(func(st State) (State, bool) {
		if !st.Tracked(name) {
			return st, false
		}
		next := st.clone()
		if err != nil {
			next.Status[name] = StatusError
			next.Errors[name] = failureMessage(err)
			return next, true
		}
		next.Datasets[name] = ds.WithReleases(releases)
		next.Status[name] = StatusSuccess
		return next, true
	})

	switch {
	case !written:
		s.logger.Debug("discarded result for untracked package", "package", name)
	case err != nil:
		s.logger.Warn("fetch failed", "package", name, "code", errors.GetCode(err), "error", err)
	default:
		s.logger.Debug("fetched package", "package", name, "points", len(ds.Points), "releases", len(releases))
	}
}

func failureMessage(err error) string {
	if msg := errors.UserMessage(err); msg != "" {
		return msg
	}
	return fallbackMessage
}
