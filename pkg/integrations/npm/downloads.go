package npm

import (
	"context"
	"fmt"

	"github.com/matzehuels/pkgtrack/pkg/errors"
	"github.com/matzehuels/pkgtrack/pkg/integrations"
	"github.com/matzehuels/pkgtrack/pkg/series"
)

// downloadsResponse covers both shapes of the downloads API: the success
// body and the single-field error body.
type downloadsResponse struct {
	Error     *string             `json:"error"`
	Start     string              `json:"start"`
	End       string              `json:"end"`
	Package   string              `json:"package"`
	Downloads []series.DailyPoint `json:"downloads"`
}

// FetchDownloads fetches last-year daily download counts for the canonical
// package name and aggregates them into a weekly dataset.
//
// Failures are *errors.Error values tagged with the package name:
// NETWORK when the API is unreachable, INVALID_RESPONSE when the body is not
// JSON, NOT_FOUND for non-2xx statuses or error payloads.
func (c *Client) FetchDownloads(ctx context.Context, name string) (*series.Dataset, error) {
	resp, err := c.Fetch(ctx, c.downloadsURL+"/"+integrations.EscapePath(name))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "Failed to reach npm downloads API").WithPackage(name)
	}

	var payload downloadsResponse
	if err := resp.Decode(&payload); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidResponse, err, "Invalid JSON received from npm downloads API").
			WithPackage(name).
			WithStatus(resp.StatusCode)
	}

	if !resp.OK() || payload.Error != nil {
		msg := fmt.Sprintf("npm downloads API responded with %d", resp.StatusCode)
		if payload.Error != nil {
			msg = *payload.Error
		}
		return nil, errors.New(errors.ErrCodeNotFound, "%s", msg).
			WithPackage(name).
			WithStatus(resp.StatusCode)
	}

	return series.NewDataset(name, payload.Start, payload.End, payload.Downloads), nil
}
