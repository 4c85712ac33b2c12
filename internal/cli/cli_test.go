package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
)

// fakeNPM serves two weeks of downloads and a small registry document for
// react and vue. Every other package is unknown.
func fakeNPM(t *testing.T) *httptest.Server {
	t.Helper()
	known := map[string]bool{"react": true, "vue": true}

	mux := http.NewServeMux()
	mux.HandleFunc("/downloads/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/downloads/")
		if !known[name] {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprintf(w, `{"error":"package %s not found"}`, name)
			return
		}
		days := make([]map[string]any, 0, 14)
		for i := 1; i <= 14; i++ {
			days = append(days, map[string]any{
				"day":       time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
				"downloads": 10,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"start":     "2024-01-01",
			"end":       "2024-01-14",
			"package":   name,
			"downloads": days,
		})
	})
	mux.HandleFunc("/registry/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"time":{"created":"2020-01-01T00:00:00.000Z","modified":"2024-01-10T00:00:00.000Z","0.9.0":"2023-06-01T00:00:00.000Z","1.0.0":"2024-01-05T12:00:00.000Z"}}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// testEnv points the configuration at upstream and isolates it from the
// user's config file.
func testEnv(t *testing.T, upstream string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PKGTRACK_DOWNLOADS_URL", upstream+"/downloads")
	t.Setenv("PKGTRACK_REGISTRY_URL", upstream+"/registry")
	t.Setenv("PKGTRACK_DEBOUNCE", "0s")
	t.Setenv("PKGTRACK_CACHE_BACKEND", "none")
}

// execute runs the root command with args and returns what it wrote to its
// output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()

	want := []string{"show", "watch", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing persistent --config flag")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, "pkgtrack version") {
		t.Errorf("version output = %q", out)
	}
}

func TestShowJSON(t *testing.T) {
	testEnv(t, fakeNPM(t).URL)

	out, err := execute(t, "show", "--json", "--chart", "React", "missing-pkg", "react")
	if err != nil {
		t.Fatalf("show: %v", err)
	}

	var report showReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}

	if len(report.Packages) != 2 {
		t.Fatalf("got %d packages, want 2 (deduplicated)", len(report.Packages))
	}
	react, missing := report.Packages[0], report.Packages[1]

	if react.PackageName != "react" || react.Status != "success" {
		t.Errorf("react = %+v", react)
	}
	if react.TotalDownloads != 140 || len(react.Points) != 2 {
		t.Errorf("react totals = %d over %d weeks, want 140 over 2", react.TotalDownloads, len(react.Points))
	}
	if len(react.Releases) != 1 || react.Releases[0].Version != "1.0.0" {
		t.Errorf("react releases = %+v, want only 1.0.0", react.Releases)
	}

	if missing.PackageName != "missing-pkg" || missing.Status != "error" || missing.Error == "" {
		t.Errorf("missing = %+v, want an error entry", missing)
	}

	if report.Query != "packages=react,missing-pkg" {
		t.Errorf("query = %q", report.Query)
	}
	if len(report.Chart) != 2 || report.Chart[0].Values["react"] != 70 {
		t.Errorf("chart = %+v", report.Chart)
	}
}

func TestShowFromQuery(t *testing.T) {
	testEnv(t, fakeNPM(t).URL)

	out, err := execute(t, "show", "--json", "--query", "theme=dark&packages=vue")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var report showReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Packages) != 1 || report.Packages[0].PackageName != "vue" {
		t.Errorf("packages = %+v", report.Packages)
	}
	if report.Chart != nil {
		t.Errorf("chart rows without --chart: %+v", report.Chart)
	}
}

func TestShowRequiresPackages(t *testing.T) {
	testEnv(t, "http://127.0.0.1:1")

	if _, err := execute(t, "show"); err == nil {
		t.Error("show without packages should fail")
	}
	if _, err := execute(t, "show", "../etc"); err == nil {
		t.Error("show with an invalid name should fail")
	}
}

func TestShowInvalidConfig(t *testing.T) {
	testEnv(t, fakeNPM(t).URL)
	t.Setenv("PKGTRACK_CACHE_BACKEND", "sqlite")

	if _, err := execute(t, "show", "react"); err == nil {
		t.Error("unknown cache backend should fail")
	}
}

func TestCacheClearRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	testEnv(t, "http://127.0.0.1:1")
	t.Setenv("PKGTRACK_CACHE_BACKEND", "redis")
	t.Setenv("PKGTRACK_CACHE_REDIS_URL", "redis://"+mr.Addr())

	mr.Set("pkgtrack:downloads:react", "{}")
	mr.Set("pkgtrack:releases:react", "[]")
	mr.Set("unrelated", "keep")

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if mr.Exists("pkgtrack:downloads:react") || mr.Exists("pkgtrack:releases:react") {
		t.Error("pkgtrack keys should be flushed")
	}
	if !mr.Exists("unrelated") {
		t.Error("keys outside the prefix should survive")
	}
}

func TestCacheClearWithoutBacking(t *testing.T) {
	testEnv(t, "http://127.0.0.1:1")
	for _, backend := range []string{"none", "memory"} {
		t.Setenv("PKGTRACK_CACHE_BACKEND", backend)
		if _, err := execute(t, "cache", "clear"); err != nil {
			t.Errorf("cache clear with %s backend: %v", backend, err)
		}
	}
}

func TestCacheInfo(t *testing.T) {
	testEnv(t, "http://127.0.0.1:1")
	if _, err := execute(t, "cache", "info"); err != nil {
		t.Fatalf("cache info: %v", err)
	}
}

func TestCompletion(t *testing.T) {
	if _, err := execute(t, "completion", "nushell"); err == nil {
		t.Error("unsupported shell should be rejected")
	}
}

func TestCacheClearNamespace(t *testing.T) {
	mr := miniredis.RunT(t)
	testEnv(t, "http://127.0.0.1:1")
	t.Setenv("PKGTRACK_CACHE_BACKEND", "redis")
	t.Setenv("PKGTRACK_CACHE_REDIS_URL", "redis://"+mr.Addr())
	t.Setenv("PKGTRACK_CACHE_NAMESPACE", "staging:")

	mr.Set("staging:pkgtrack:downloads:react", "{}")
	mr.Set("pkgtrack:downloads:react", "{}")

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if mr.Exists("staging:pkgtrack:downloads:react") {
		t.Error("namespaced key should be flushed")
	}
	if !mr.Exists("pkgtrack:downloads:react") {
		t.Error("keys of other namespaces should survive")
	}
}
