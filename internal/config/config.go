// Package config loads pkgtrack settings.
//
// Settings come from three layers, later layers winning:
//
//  1. Built-in defaults (see Default)
//  2. A TOML file, $XDG_CONFIG_HOME/pkgtrack/config.toml unless a path is given
//  3. PKGTRACK_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// # Example file
//
//	downloads_url = "https://api.npmjs.org/downloads/range/last-year"
//	registry_url  = "https://registry.npmjs.org"
//	debounce      = "300ms"
//	http_timeout  = "10s"
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "1h"
//	namespace = "staging:"
//
//	[server]
//	addr         = ":8080"
//	cors_origins = ["http://localhost:5173"]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/fetch"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/integrations/npm"
)

const (
	// AppName names the config directory and the environment prefix.
	AppName = "pkgtrack"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "PKGTRACK_"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the full set of pkgtrack settings.
type Config struct {
	DownloadsURL string        `toml:"downloads_url"`
	RegistryURL  string        `toml:"registry_url"`
	Debounce     time.Duration `toml:"debounce"`
	HTTPTimeout  time.Duration `toml:"http_timeout"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the backing cache shared by the coordinators.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`

	// Namespace is prepended to every key so that several deployments can
	// share one Redis database.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures `pkgtrack serve`.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DownloadsURL: npm.DefaultDownloadsURL,
		RegistryURL:  npm.DefaultRegistryURL,
		Debounce:     fetch.DefaultDebounce,
		HTTPTimeout:  integrations.DefaultTimeout,
		Cache: CacheConfig{
			Backend: BackendMemory,
			TTL:     time.Hour,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config file at path, then applies environment overrides.
// An empty path means the default location, where a missing file is not an
// error. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		if err != nil && (explicit || !os.IsNotExist(err)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, EnvSource(os.LookupEnv)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks URLs, durations and the cache backend.
func (c *Config) Validate() error {
	if err := errors.ValidateURL(c.DownloadsURL); err != nil {
		return fmt.Errorf("downloads_url: %w", err)
	}
	if err := errors.ValidateURL(c.RegistryURL); err != nil {
		return fmt.Errorf("registry_url: %w", err)
	}
	if c.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "debounce must not be negative")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "http_timeout must be positive")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidArgument, "cache.ttl must not be negative")
	}

	switch c.Cache.Backend {
	case BackendMemory, BackendNone:
	case BackendRedis:
		if strings.TrimSpace(c.Cache.RedisURL) == "" {
			return errors.New(errors.ErrCodeInvalidArgument, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}
