// Package integrations provides HTTP clients for the upstream npm APIs.
//
// # Overview
//
// Two upstreams feed pkgtrack, both served by the [npm] subpackage:
//
//   - the downloads API (https://api.npmjs.org/downloads/range/last-year),
//     which returns daily download counts for the last year
//   - the registry (https://registry.npmjs.org), whose package document
//     carries a "time" map of version publish dates
//
// # Shared Infrastructure
//
// The [Client] type performs GET requests with a bounded timeout, default
// headers, and observability hooks. Provider clients decide how status codes
// and payload shapes map to the coded errors of [errors].
//
// [NormalizePkgName] defines the canonical form of a package identifier. It
// is used everywhere names are compared or stored as keys.
//
// [npm]: github.com/matzehuels/pkgtrack/pkg/integrations/npm
// [errors]: github.com/matzehuels/pkgtrack/pkg/errors
package integrations
