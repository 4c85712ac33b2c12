package npm

import (
	"strings"

	"github.com/matzehuels/pkgtrack/pkg/integrations"
)

// Default upstream endpoints.
const (
	DefaultDownloadsURL = "https://api.npmjs.org/downloads/range/last-year"
	DefaultRegistryURL  = "https://registry.npmjs.org"
)

// Client fetches download counts and release timelines from npm.
// It satisfies both provider contracts the tracking store depends on.
type Client struct {
	*integrations.Client
	downloadsURL string
	registryURL  string
}

// Option configures a Client.
type Option func(*Client)

// WithDownloadsURL overrides the downloads API base URL.
func WithDownloadsURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.downloadsURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRegistryURL overrides the registry base URL.
func WithRegistryURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.registryURL = strings.TrimRight(u, "/")
		}
	}
}

// NewClient creates an npm client on top of a shared HTTP client.
func NewClient(client *integrations.Client, opts ...Option) *Client {
	c := &Client{
		Client:       client,
		downloadsURL: DefaultDownloadsURL,
		registryURL:  DefaultRegistryURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
