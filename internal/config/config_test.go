package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/pkgtrack/pkg/fetch"
	"github.com/matzehuels/pkgtrack/pkg/integrations/npm"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DownloadsURL != npm.DefaultDownloadsURL {
		t.Errorf("DownloadsURL = %s", cfg.DownloadsURL)
	}
	if cfg.Debounce != fetch.DefaultDebounce {
		t.Errorf("Debounce = %v, want %v", cfg.Debounce, fetch.DefaultDebounce)
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("Cache.Backend = %s, want memory", cfg.Cache.Backend)
	}
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
downloads_url = "http://localhost:9000/downloads"
debounce = "50ms"
http_timeout = "3s"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/1"
ttl = "10m"

[server]
addr = ":9999"
cors_origins = ["http://a.test", "http://b.test"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DownloadsURL != "http://localhost:9000/downloads" {
		t.Errorf("DownloadsURL = %s", cfg.DownloadsURL)
	}
	if cfg.RegistryURL != npm.DefaultRegistryURL {
		t.Errorf("RegistryURL should keep its default, got %s", cfg.RegistryURL)
	}
	if cfg.Debounce != 50*time.Millisecond || cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("durations = %v, %v", cfg.Debounce, cfg.HTTPTimeout)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9999" || len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
debounce = "50ms"

[server]
addr = ":9999"
`)
	t.Setenv("PKGTRACK_DEBOUNCE", "0s")
	t.Setenv("PKGTRACK_SERVER_ADDR", "127.0.0.1:7000")
	t.Setenv("PKGTRACK_SERVER_CORS_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("PKGTRACK_CACHE_BACKEND", "none")
	t.Setenv("PKGTRACK_CACHE_NAMESPACE", "staging:")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Debounce != 0 {
		t.Errorf("Debounce = %v, want 0", cfg.Debounce)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" {
		t.Errorf("Server.Addr = %s", cfg.Server.Addr)
	}
	if want := []string{"http://a.test", "http://b.test"}; !slices.Equal(cfg.Server.CORSOrigins, want) {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("Cache.Backend = %s", cfg.Cache.Backend)
	}
	if cfg.Cache.Namespace != "staging:" {
		t.Errorf("Cache.Namespace = %q", cfg.Cache.Namespace)
	}
}

func TestEnvInvalidDuration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PKGTRACK_HTTP_TIMEOUT", "soon")

	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad downloads url", func(c *Config) { c.DownloadsURL = "ftp://x" }, true},
		{"bad registry url", func(c *Config) { c.RegistryURL = "" }, true},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Second }, true},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }, true},
		{"redis without url", func(c *Config) { c.Cache.Backend = BackendRedis }, true},
		{"redis with url", func(c *Config) {
			c.Cache.Backend = BackendRedis
			c.Cache.RedisURL = "redis://localhost:6379"
		}, false},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "disk" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/tmp/xdg", "pkgtrack", "config.toml") {
		t.Errorf("Path() = %s", p)
	}
}
