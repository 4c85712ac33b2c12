package series

import (
	"cmp"
	"slices"
	"time"
)

// reservedTimeKeys are registry time-map entries that describe the package
// document itself rather than a published version.
var reservedTimeKeys = map[string]bool{
	"created":  true,
	"modified": true,
}

var timestampLayouts = []string{
	time.RFC3339,
	time.DateOnly,
}

// ParseTimestamp parses the timestamp formats registries publish.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterReleases turns a registry time map into releases sorted ascending by
// date. Reserved keys and entries with unparsable dates are dropped silently.
func FilterReleases(timeMap map[string]string) []Release {
	releases := make([]Release, 0, len(timeMap))
	for version, date := range timeMap {
		if reservedTimeKeys[version] {
			continue
		}
		if _, ok := ParseTimestamp(date); !ok {
			continue
		}
		releases = append(releases, Release{Version: version, Date: date})
	}

	// ISO-8601 strings order lexicographically; version breaks ties so the
	// result does not depend on map iteration order.
	slices.SortFunc(releases, func(a, b Release) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.Version, b.Version))
	})
	return releases
}

// WithReleases returns a copy of d carrying the releases published within
// [d.Start, d.End], both bounds inclusive and compared by calendar day (UTC).
// If either bound cannot be parsed no releases are attached.
func (d *Dataset) WithReleases(releases []Release) *Dataset {
	out := *d
	out.Releases = []Release{}

	start, okStart := ParseTimestamp(d.Start)
	end, okEnd := ParseTimestamp(d.End)
	if !okStart || !okEnd {
		return &out
	}
	first, last := day(start), day(end)

	for _, r := range releases {
		t, ok := ParseTimestamp(r.Date)
		if !ok {
			continue
		}
		if published := day(t); published >= first && published <= last {
			out.Releases = append(out.Releases, r)
		}
	}
	return &out
}

func day(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
