package fetch

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgtrack/pkg/cache"
	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/observability"
)

// DefaultDebounce is the dispatch delay of the download-counts coordinator.
const DefaultDebounce = 300 * time.Millisecond

// Source names used by the two npm coordinators.
const (
	SourceDownloads = "downloads"
	SourceReleases  = "releases"
)

// ErrClosed is delivered to callers waiting on a coordinator that was closed
// before their request was dispatched.
var ErrClosed = errors.New(errors.ErrCodeInternal, "request coordinator closed")

// Func performs the upstream call for a canonical package name.
type Func[T any] func(ctx context.Context, name string) (T, error)

// Options configures a Coordinator.
type Options struct {
	// Source names the data source in cache keys, logs and metrics.
	Source string

	// Debounce delays each new dispatch. Zero dispatches immediately.
	Debounce time.Duration

	// Backing is consulted on memory misses and written on success.
	// Nil disables the backing layer.
	Backing cache.Cache

	// Keyer builds backing keys. Defaults to cache.NewDefaultKeyer().
	Keyer cache.Keyer

	// TTL applies to backing writes. Zero keeps entries until cleared.
	TTL time.Duration

	// Logger receives debug events. Defaults to log.Default().
	Logger *log.Logger
}

// Coordinator caches, coalesces and optionally debounces requests per
// canonical package name.
type Coordinator[T any] struct {
	fn       Func[T]
	source   string
	debounce time.Duration
	backing  cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	cache   map[string]T
	pending map[string]*call[T]
	timers  map[string]*time.Timer
	closed  bool
}

type call[T any] struct {
	ctx  context.Context
	done chan struct{}
	val  T
	err  error
}

// New creates a coordinator around fn.
func New[T any](fn Func[T], opts Options) *Coordinator[T] {
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Coordinator[T]{
		fn:       fn,
		source:   opts.Source,
		debounce: opts.Debounce,
		backing:  opts.Backing,
		keyer:    opts.Keyer,
		ttl:      opts.TTL,
		logger:   opts.Logger,
		cache:    make(map[string]T),
		pending:  make(map[string]*call[T]),
		timers:   make(map[string]*time.Timer),
	}
}

// Source returns the configured source name.
func (c *Coordinator[T]) Source() string {
	return c.source
}

// Fetch returns the result for the package, from cache, by joining an
// in-flight request, or by starting a new one.
//
// An empty name fails with INVALID_ARGUMENT before any I/O. If ctx is done
// before the result arrives, Fetch returns ctx.Err(); the request itself
// keeps running for other waiters and still populates the cache.
func (c *Coordinator[T]) Fetch(ctx context.Context, raw string) (T, error) {
	var zero T
	name := integrations.NormalizePkgName(raw)
	if name == "" {
		return zero, errors.New(errors.ErrCodeInvalidArgument, "Package name is required")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrClosed
	}
	if v, ok := c.cache[name]; ok {
		c.mu.Unlock()
		observability.Cache().OnCacheHit(ctx, c.source)
		return v, nil
	}
	if cl, ok := c.pending[name]; ok {
		c.mu.Unlock()
		observability.Fetch().OnCoalesced(ctx, c.source, name)
		return wait(ctx, cl)
	}

	cl := &call[T]{ctx: context.WithoutCancel(ctx), done: make(chan struct{})}
	c.pending[name] = cl
	if c.backing == nil {
		c.schedule(name, cl)
	}
	c.mu.Unlock()

	if c.backing != nil {
		go c.start(name, cl)
	} else {
		observability.Cache().OnCacheMiss(ctx, c.source)
	}
	return wait(ctx, cl)
}

// Cached returns the in-memory result for the package without any I/O.
func (c *Coordinator[T]) Cached(raw string) (T, bool) {
	name := integrations.NormalizePkgName(raw)
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.cache[name]
	return v, ok
}

// ClearCache drops the cached result for one package, or every cached result
// when raw is empty. In-flight requests are unaffected.
func (c *Coordinator[T]) ClearCache(ctx context.Context, raw string) error {
	name := integrations.NormalizePkgName(raw)

	c.mu.Lock()
	if name == "" {
		c.cache = make(map[string]T)
	} else {
		delete(c.cache, name)
	}
	c.mu.Unlock()

	if c.backing == nil {
		return nil
	}
	if name != "" {
		return c.backing.Delete(ctx, c.keyer.Key(c.source, name))
	}
	if f, ok := c.backing.(cache.Flusher); ok {
		_, err := f.Flush(ctx, c.keyer.Key(c.source, ""))
		return err
	}
	return nil
}

// Close stops armed debounce timers and fails their waiters with ErrClosed.
// Requests already dispatched run to completion. Later calls to Fetch fail.
func (c *Coordinator[T]) Close() error {
	c.mu.Lock()
	c.closed = true
	var stopped []string
	for name, t := range c.timers {
		if t.Stop() {
			stopped = append(stopped, name)
		}
		delete(c.timers, name)
	}
	calls := make([]*call[T], 0, len(stopped))
	for _, name := range stopped {
		calls = append(calls, c.pending[name])
	}
	c.mu.Unlock()

	var zero T
	for i, name := range stopped {
		if calls[i] != nil {
			c.settle(name, calls[i], zero, ErrClosed)
		}
	}
	return nil
}

// start resolves a new request from the backing cache or schedules it.
func (c *Coordinator[T]) start(name string, cl *call[T]) {
	if v, ok := c.load(cl.ctx, name); ok {
		c.settle(name, cl, v, nil)
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		var zero T
		c.settle(name, cl, zero, ErrClosed)
		return
	}
	c.schedule(name, cl)
	c.mu.Unlock()
}

// schedule arms the debounce timer or dispatches immediately.
// c.mu must be held.
func (c *Coordinator[T]) schedule(name string, cl *call[T]) {
	if c.debounce <= 0 {
		go c.dispatch(name, cl)
		return
	}
	c.timers[name] = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		delete(c.timers, name)
		c.mu.Unlock()
		c.dispatch(name, cl)
	})
}

func (c *Coordinator[T]) dispatch(name string, cl *call[T]) {
	ctx := cl.ctx
	hooks := observability.Fetch()
	hooks.OnFetchStart(ctx, c.source, name)
	c.logger.Debug("dispatch", "source", c.source, "package", name)

	start := time.Now()
	v, err := c.fn(ctx, name)
	elapsed := time.Since(start)
	hooks.OnFetchComplete(ctx, c.source, name, elapsed, err)

	if err != nil {
		c.logger.Debug("fetch failed", "source", c.source, "package", name, "error", err)
	} else {
		c.logger.Debug("fetched", "source", c.source, "package", name, "elapsed", elapsed)
		c.store(ctx, name, v)
	}
	c.settle(name, cl, v, err)
}

// settle records the outcome, releases the pending entry and wakes waiters.
func (c *Coordinator[T]) settle(name string, cl *call[T], v T, err error) {
	c.mu.Lock()
	if err == nil && !c.closed {
		c.cache[name] = v
	}
	if c.pending[name] == cl {
		delete(c.pending, name)
	}
	c.mu.Unlock()

	cl.val, cl.err = v, err
	close(cl.done)
}

func (c *Coordinator[T]) load(ctx context.Context, name string) (T, bool) {
	var v T
	data, ok, err := c.backing.Get(ctx, c.keyer.Key(c.source, name))
	if err != nil {
		c.logger.Warn("backing cache read failed", "source", c.source, "package", name, "error", err)
		return v, false
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, c.source)
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "source", c.source, "package", name, "error", err)
		return v, false
	}
	observability.Cache().OnCacheHit(ctx, c.source)
	return v, true
}

func (c *Coordinator[T]) store(ctx context.Context, name string, v T) {
	if c.backing == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("encode cache entry", "source", c.source, "package", name, "error", err)
		return
	}
	if err := c.backing.Set(ctx, c.keyer.Key(c.source, name), data, c.ttl); err != nil {
		c.logger.Warn("backing cache write failed", "source", c.source, "package", name, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, c.source, len(data))
}

func wait[T any](ctx context.Context, cl *call[T]) (T, error) {
	select {
	case <-cl.done:
		return cl.val, cl.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
