package npm

import (
	"context"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/series"
)

type registryResponse struct {
	Time map[string]string `json:"time"`
}

// FetchReleases fetches the registry document for the canonical package name
// and returns its release timeline, sorted ascending by date.
//
// Every failure is reported with the single code UPSTREAM.
func (c *Client) FetchReleases(ctx context.Context, name string) ([]series.Release, error) {
	resp, err := c.Fetch(ctx, c.registryURL+"/"+integrations.EscapePath(name))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "Failed to reach npm registry").WithPackage(name)
	}

	var payload registryResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "Invalid JSON received from npm registry").
			WithPackage(name).
			WithStatus(resp.StatusCode)
	}

	if !resp.OK() {
		return nil, errors.New(errors.ErrCodeUpstream, "npm registry responded with %d", resp.StatusCode).
			WithPackage(name).
			WithStatus(resp.StatusCode)
	}

	return series.FilterReleases(payload.Time), nil
}
