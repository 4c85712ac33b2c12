package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pkgtrack/internal/config"
	"github.com/matzehuels/pkgtrack/pkg/buildinfo"
	"github.com/matzehuels/pkgtrack/pkg/cache"
	"github.com/matzehuels/pkgtrack/pkg/fetch"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/integrations/npm"
	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

// runtime is the composition root shared by every command: one npm client,
// one coordinator per source and a single tracking store.
type runtime struct {
	cfg       *config.Config
	backing   cache.Cache
	keyer     cache.Keyer
	downloads *fetch.Coordinator[*series.Dataset]
	releases  *fetch.Coordinator[[]series.Release]
	store     *tracker.Store
}

// newBacking opens the configured backing cache. With the none backend the
// coordinators keep results in process memory only.
func newBacking(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

// newKeyer returns the key layout for cfg, scoped by the cache namespace.
func newKeyer(cfg *config.Config) cache.Keyer {
	if cfg.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Namespace)
}

func newRuntime(ctx context.Context, cfg *config.Config, logger *log.Logger) (*runtime, error) {
	backing, err := newBacking(ctx, cfg)
	if err != nil {
		return nil, err
	}
	keyer := newKeyer(cfg)

	client := integrations.NewClient(cfg.HTTPTimeout, map[string]string{
		"User-Agent": appName + "/" + buildinfo.Version,
	})
	npmClient := npm.NewClient(client,
		npm.WithDownloadsURL(cfg.DownloadsURL),
		npm.WithRegistryURL(cfg.RegistryURL),
	)

	downloads := fetch.New[*series.Dataset](npmClient.FetchDownloads, fetch.Options{
		Source:   fetch.SourceDownloads,
		Debounce: cfg.Debounce,
		Backing:  backing,
		Keyer:    keyer,
		TTL:      cfg.Cache.TTL,
		Logger:   logger,
	})
	releases := fetch.New[[]series.Release](npmClient.FetchReleases, fetch.Options{
		Source:  fetch.SourceReleases,
		Backing: backing,
		Keyer:   keyer,
		TTL:     cfg.Cache.TTL,
		Logger:  logger,
	})

	return &runtime{
		cfg:       cfg,
		backing:   backing,
		keyer:     keyer,
		downloads: downloads,
		releases:  releases,
		store: tracker.New(tracker.Options{
			Downloads: downloads,
			Releases:  releases,
			Logger:    logger,
		}),
	}, nil
}

// close waits for in-flight fetches and releases every resource.
func (r *runtime) close() {
	r.store.Wait()
	_ = r.downloads.Close()
	_ = r.releases.Close()
	_ = r.backing.Close()
}
