// Package fetch coordinates upstream requests for one data source.
//
// # Overview
//
// A [Coordinator] sits between the tracking store and a provider call. For
// each canonical package name it guarantees:
//
//   - results are cached for the life of the coordinator (until [Coordinator.ClearCache])
//   - concurrent callers share one in-flight request
//   - an optional debounce window delays the dispatch; callers arriving during
//     the window join the single pending timer instead of restarting it
//   - failures are delivered to every waiter and never cached
//
// An optional [cache.Cache] backs the in-memory layer so several processes
// can share results (for example through Redis).
//
// # Usage
//
//	downloads := fetch.New(client.FetchDownloads, fetch.Options{
//	    Source:   "downloads",
//	    Debounce: 300 * time.Millisecond,
//	})
//	defer downloads.Close()
//
//	ds, err := downloads.Fetch(ctx, "React")
//
// [cache.Cache]: github.com/matzehuels/pkgtrack/pkg/cache.Cache
package fetch
