package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/pkgtrack/pkg/series"
	"github.com/matzehuels/pkgtrack/pkg/tracker"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1k"},
		{1_234, "1.2k"},
		{999_949, "999.9k"},
		{3_400_000, "3.4M"},
		{1_000_000_000, "1B"},
		{-1_500, "-1.5k"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.n); got != tt.want {
			t.Errorf("formatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestLatestRelease(t *testing.T) {
	s := tracker.Summary{}
	if got := latestRelease(s); got != "—" {
		t.Errorf("no releases: got %q", got)
	}

	s.Releases = []series.Release{
		{Version: "1.0.0", Date: "2024-01-02T10:00:00.000Z"},
		{Version: "1.1.0", Date: "2024-03-04T10:00:00.000Z"},
	}
	if got := latestRelease(s); got != "1.1.0 (2024-03-04)" {
		t.Errorf("got %q", got)
	}
}

func TestSummaryTable(t *testing.T) {
	summaries := []tracker.Summary{
		{
			Dataset: series.Dataset{
				PackageName:      "react",
				Points:           []series.DownloadPoint{{Date: "2024-01-01", Downloads: 1_200}},
				TotalDownloads:   1_200,
				LastDayDownloads: 150,
			},
			Status: tracker.StatusSuccess,
		},
		{
			Dataset: series.Dataset{PackageName: "left-pad"},
			Status:  tracker.StatusError,
			Error:   "Package not found",
		},
	}

	out := summaryTable(summaries, 0)
	for _, want := range []string{"Package", "react", "1.2k", "150", "left-pad", "▸"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "▸") != 1 {
		t.Errorf("exactly one row should carry the cursor:\n%s", out)
	}
}
