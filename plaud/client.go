// Package plaud wraps the Plaud.ai REST API: login, the recording
// catalog, generation triggering and status, and content export
// endpoints.
package plaud

import (
	"log/slog"
	nethttp "net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	pnehttp "github.com/Wicz-Cloud/pai-note-exporter/http"
	"github.com/Wicz-Cloud/pai-note-exporter/logging"
)

// deviceIDLength matches the x-device-id values the Plaud web client sends.
const deviceIDLength = 18

// Client provides access to the Plaud.ai REST API.
type Client struct {
	http    *pnehttp.Client
	baseURL string
	logger  *slog.Logger
}

// Options configures the client.
type Options struct {
	// BaseURL is the API endpoint, e.g. https://api.plaud.ai.
	BaseURL string

	// TokenSource supplies the bearer token. Nil for a client that only
	// performs login.
	TokenSource oauth2.TokenSource

	// HTTPClient overrides the underlying transport, mainly for tests.
	HTTPClient *nethttp.Client

	// RequestsPerSecond and Burst tune the outbound token bucket.
	// Zero values select the shared client defaults.
	RequestsPerSecond float64
	Burst             int
}

// NewClient creates a Plaud API client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")

	deviceID := newDeviceID()
	return &Client{
		http: pnehttp.NewClient(pnehttp.ClientConfig{
			Client:      opts.HTTPClient,
			BaseURL:     baseURL,
			TokenSource: opts.TokenSource,
			Headers: map[string]string{
				"edit-from":    "web",
				"app-platform": "web",
				"x-device-id":  deviceID,
				"x-pld-tag":    deviceID,
			},
			RequestsPerSecond: opts.RequestsPerSecond,
			Burst:             opts.Burst,
		}),
		baseURL: baseURL,
		logger:  logging.Logger("plaud"),
	}
}

// WithToken returns a new client bound to the given session token. The
// receiver is unchanged; its rate limiter is not shared, so callers
// should build the authenticated client once per run.
func (c *Client) WithToken(opts Options, tok *oauth2.Token) *Client {
	opts.TokenSource = oauth2.StaticTokenSource(tok)
	return NewClient(opts)
}

// newDeviceID generates an opaque device tag in the format the web
// client uses: a dash-stripped UUID truncated to 18 characters.
func newDeviceID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return raw[:deviceIDLength]
}
