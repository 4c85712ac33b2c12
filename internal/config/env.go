package config

import (
	"fmt"
	"strings"
	"time"
)

// EnvSource looks up a single environment variable, like os.LookupEnv.
type EnvSource func(key string) (string, bool)

// envConf is a prefixed view over an EnvSource.
type envConf struct {
	prefix string
	lookup EnvSource
}

func (e envConf) string(key string, dst *string) {
	if v, ok := e.lookup(e.prefix + key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func (e envConf) duration(key string, dst *time.Duration) error {
	var s string
	e.string(key, &s)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s%s: invalid duration %q (e.g. 250ms, 2s, 1h)", e.prefix, key, s)
	}
	*dst = d
	return nil
}

func (e envConf) list(key string, dst *[]string) {
	var s string
	e.string(key, &s)
	if s == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

// applyEnv overlays PKGTRACK_* variables on cfg. Nested keys use an
// underscore, so cache.redis_url becomes PKGTRACK_CACHE_REDIS_URL.
func applyEnv(cfg *Config, lookup EnvSource) error {
	env := envConf{prefix: EnvPrefix, lookup: lookup}

	env.string("DOWNLOADS_URL", &cfg.DownloadsURL)
	env.string("REGISTRY_URL", &cfg.RegistryURL)
	if err := env.duration("DEBOUNCE", &cfg.Debounce); err != nil {
		return err
	}
	if err := env.duration("HTTP_TIMEOUT", &cfg.HTTPTimeout); err != nil {
		return err
	}

	env.string("CACHE_BACKEND", &cfg.Cache.Backend)
	env.string("CACHE_REDIS_URL", &cfg.Cache.RedisURL)
	env.string("CACHE_NAMESPACE", &cfg.Cache.Namespace)
	if err := env.duration("CACHE_TTL", &cfg.Cache.TTL); err != nil {
		return err
	}

	env.string("SERVER_ADDR", &cfg.Server.Addr)
	env.list("SERVER_CORS_ORIGINS", &cfg.Server.CORSOrigins)
	return nil
}
