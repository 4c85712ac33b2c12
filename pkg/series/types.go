package series

// DailyPoint is one raw entry of a download-counts response.
type DailyPoint struct {
	Day       string `json:"day"`
	Downloads int64  `json:"downloads"`
}

// DownloadPoint is a 7-day bucket. Date is the first day of the bucket.
type DownloadPoint struct {
	Date      string `json:"date"`
	Downloads int64  `json:"downloads"`
}

// Release is a published version and its ISO-8601 publish timestamp.
type Release struct {
	Version string `json:"version"`
	Date    string `json:"date"`
}

// Dataset is the merged download history and release timeline of one package.
type Dataset struct {
	PackageName      string          `json:"package_name"`
	Start            string          `json:"start"`
	End              string          `json:"end"`
	Points           []DownloadPoint `json:"points"`
	TotalDownloads   int64           `json:"total_downloads"`
	LastDayDownloads int64           `json:"last_day_downloads"`
	Releases         []Release       `json:"releases"`
}

// Empty returns a placeholder dataset for a package that has no data yet.
func Empty(packageName string) *Dataset {
	return &Dataset{
		PackageName: packageName,
		Points:      []DownloadPoint{},
		Releases:    []Release{},
	}
}
