// Package npm provides an HTTP client for the npm downloads API and registry.
//
// # Overview
//
// [Client] serves the two upstream data sources of pkgtrack:
//
//   - [Client.FetchDownloads] reads https://api.npmjs.org/downloads/range/last-year/<name>
//     and returns a weekly [series.Dataset]
//   - [Client.FetchReleases] reads https://registry.npmjs.org/<name> and returns
//     the filtered release timeline from the document's "time" map
//
// # Usage
//
//	client := npm.NewClient(integrations.NewClient(10*time.Second, nil))
//
//	ds, err := client.FetchDownloads(ctx, "react")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(ds.TotalDownloads, len(ds.Points))
//
// # Errors
//
// Download failures carry NETWORK, NOT_FOUND or INVALID_RESPONSE codes;
// registry failures always carry UPSTREAM. Both set the package name and,
// where a response arrived, its HTTP status.
//
// Names are expected in canonical form; see [integrations.NormalizePkgName].
//
// [series.Dataset]: github.com/matzehuels/pkgtrack/pkg/series.Dataset
// [integrations.NormalizePkgName]: github.com/matzehuels/pkgtrack/pkg/integrations.NormalizePkgName
package npm
