package npm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(integrations.NewClient(time.Second, nil),
		WithDownloadsURL(baseURL+"/downloads"),
		WithRegistryURL(baseURL+"/registry"),
	)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(integrations.NewClient(0, nil))
	if c.downloadsURL != DefaultDownloadsURL {
		t.Errorf("downloadsURL = %s", c.downloadsURL)
	}
	if c.registryURL != DefaultRegistryURL {
		t.Errorf("registryURL = %s", c.registryURL)
	}

	c = NewClient(integrations.NewClient(0, nil), WithRegistryURL("http://localhost:4873/"))
	if c.registryURL != "http://localhost:4873" {
		t.Errorf("trailing slash should be trimmed, got %s", c.registryURL)
	}
}

func TestFetchDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/downloads/react" {
			http.NotFound(w, r)
			return
		}
		days := make([]map[string]any, 0, 10)
		for i := 1; i <= 10; i++ {
			days = append(days, map[string]any{
				"day":       time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
				"downloads": i,
			})
		}
		json.NewEncoder(w).Encode(map[string]any{
			"start":     "2024-01-01",
			"end":       "2024-01-10",
			"package":   "react",
			"downloads": days,
		})
	}))
	defer server.Close()

	ds, err := testClient(t, server.URL).FetchDownloads(context.Background(), "react")
	if err != nil {
		t.Fatalf("FetchDownloads failed: %v", err)
	}

	if ds.PackageName != "react" {
		t.Errorf("PackageName = %s", ds.PackageName)
	}
	if ds.Start != "2024-01-01" || ds.End != "2024-01-10" {
		t.Errorf("period = %s..%s", ds.Start, ds.End)
	}
	if len(ds.Points) != 1 || ds.Points[0].Downloads != 28 {
		t.Fatalf("Points = %+v, want one bucket of 28", ds.Points)
	}
	if ds.TotalDownloads != 28 {
		t.Errorf("TotalDownloads = %d, want 28", ds.TotalDownloads)
	}
	if ds.LastDayDownloads != 10 {
		t.Errorf("LastDayDownloads = %d, want 10", ds.LastDayDownloads)
	}
	if len(ds.Releases) != 0 {
		t.Errorf("Releases = %v, want none", ds.Releases)
	}
}

func TestFetchDownloadsEscapesScopedNames(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"start":"2024-01-01","end":"2024-01-01","downloads":[]}`))
	}))
	defer server.Close()

	if _, err := testClient(t, server.URL).FetchDownloads(context.Background(), "@types/node"); err != nil {
		t.Fatalf("FetchDownloads failed: %v", err)
	}
	if gotPath != "/downloads/@types%2Fnode" {
		t.Errorf("path = %s", gotPath)
	}
}

func TestFetchDownloadsErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantCode   errors.Code
		wantMsg    string
		wantStatus int
	}{
		{
			name:       "error payload",
			status:     http.StatusOK,
			body:       `{"error":"package react-nope not found"}`,
			wantCode:   errors.ErrCodeNotFound,
			wantMsg:    "package react-nope not found",
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-2xx with error payload",
			status:     http.StatusNotFound,
			body:       `{"error":"not found"}`,
			wantCode:   errors.ErrCodeNotFound,
			wantMsg:    "not found",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-2xx without error field",
			status:     http.StatusBadGateway,
			body:       `{}`,
			wantCode:   errors.ErrCodeNotFound,
			wantMsg:    "npm downloads API responded with 502",
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "invalid json",
			status:     http.StatusOK,
			body:       `<html>`,
			wantCode:   errors.ErrCodeInvalidResponse,
			wantMsg:    "Invalid JSON received from npm downloads API",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(t, server.URL).FetchDownloads(context.Background(), "react-nope")
			if err == nil {
				t.Fatal("expected error")
			}

			e, ok := errors.As(err)
			if !ok {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if e.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", e.Code, tt.wantCode)
			}
			if e.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", e.Message, tt.wantMsg)
			}
			if e.Package != "react-nope" {
				t.Errorf("Package = %q", e.Package)
			}
			if e.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", e.Status, tt.wantStatus)
			}
		})
	}
}

func TestFetchDownloadsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := testClient(t, url).FetchDownloads(context.Background(), "react")
	if !errors.Is(err, errors.ErrCodeNetwork) {
		t.Fatalf("error = %v, want NETWORK", err)
	}
	if e, ok := errors.As(err); ok && e.Status != 0 {
		t.Errorf("Status = %d, want 0 without a response", e.Status)
	}
}

func TestFetchReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/registry/react" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"name": "react",
			"time": {
				"created": "2011-10-26T17:46:21.942Z",
				"modified": "2024-06-01T00:00:00.000Z",
				"18.0.0": "2022-03-29T15:00:00.000Z",
				"17.0.0": "2020-10-20T20:00:00.000Z",
				"broken": "not-a-date"
			}
		}`))
	}))
	defer server.Close()

	releases, err := testClient(t, server.URL).FetchReleases(context.Background(), "react")
	if err != nil {
		t.Fatalf("FetchReleases failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("got %d releases, want 2: %v", len(releases), releases)
	}
	if releases[0].Version != "17.0.0" || releases[1].Version != "18.0.0" {
		t.Errorf("releases not sorted by date: %v", releases)
	}
}

func TestFetchReleasesMissingTimeMap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"fresh"}`))
	}))
	defer server.Close()

	releases, err := testClient(t, server.URL).FetchReleases(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("FetchReleases failed: %v", err)
	}
	if len(releases) != 0 {
		t.Errorf("releases = %v, want none", releases)
	}
}

func TestFetchReleasesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"not found", http.StatusNotFound, `{"error":"Not found"}`},
		{"invalid json", http.StatusOK, `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := testClient(t, server.URL).FetchReleases(context.Background(), "missing")
			if !errors.Is(err, errors.ErrCodeUpstream) {
				t.Errorf("error = %v, want UPSTREAM", err)
			}
		})
	}
}
