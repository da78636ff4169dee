// Package transport provides the configured HTTP channel shared by every
// comparison API operation. A Client is immutable after construction and safe
// for concurrent use; every failure it returns is an *apierr.Error.
package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/constants"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the service address, e.g. http://localhost:8000.
	BaseURL string
	// Timeout bounds each call; defaults to 60 seconds.
	Timeout time.Duration
	// Headers are sent with every request.
	Headers map[string]string
	// UserAgent defaults to the application name.
	UserAgent string
	// HTTPClient overrides the underlying client. Its Timeout is set to
	// Timeout when zero.
	HTTPClient *http.Client
	// Normalizer classifies failures; defaults to English messages.
	Normalizer *apierr.Normalizer
	// Logger receives request logs; defaults to slog.Default().
	Logger *slog.Logger
	// CaptureDir, when set, stores every response body for fixtures.
	CaptureDir string
}

// Client is a configured HTTP channel to the comparison service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
	normalizer *apierr.Normalizer
	logger     *slog.Logger
	captureDir string
}

// New creates a Client. An unusable base address is reported as a
// RequestConfigurationError.
func New(opts Options) (*Client, error) {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = apierr.NewNormalizer(apierr.DefaultMessages())
	}

	parsed, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, normalizer.Normalize(apierr.Failure{Err: fmt.Errorf("invalid API URL: %w", err)})
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, normalizer.Normalize(apierr.Failure{
			Err: fmt.Errorf("invalid API URL %q: expected http(s)://host", opts.BaseURL),
		})
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = constants.DefaultRequestTimeout
	}

	var httpClient http.Client
	if opts.HTTPClient != nil {
		httpClient = *opts.HTTPClient
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = timeout
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = constants.AppName
	}
	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("User-Agent", userAgent)
	for k, v := range opts.Headers {
		headers.Set(k, v)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &httpClient,
		headers:    headers,
		normalizer: normalizer,
		logger:     logger,
	}
	if opts.CaptureDir != "" {
		if err := os.MkdirAll(opts.CaptureDir, 0750); err != nil {
			return nil, normalizer.Normalize(apierr.Failure{Err: fmt.Errorf("could not create capture directory: %w", err)})
		}
		c.captureDir = opts.CaptureDir
	}
	return c, nil
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Origin returns scheme://host of the service, used to scope session storage.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// Timeout returns the per-call upper bound.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Normalizer returns the failure classifier used by this client.
func (c *Client) Normalizer() *apierr.Normalizer {
	return c.normalizer
}

// Reject normalizes a response that arrived with status but could not be
// accepted, e.g. an envelope in an unknown state.
func (c *Client) Reject(status int, cause error) error {
	return c.normalizer.Normalize(apierr.Failure{StatusCode: status, Err: cause, Sent: true})
}

// Invalid normalizes a call that was rejected before reaching the wire.
func (c *Client) Invalid(cause error) error {
	return c.normalizer.Normalize(apierr.Failure{Err: cause})
}

// resolveURL builds a full URL from the base URL and the endpoint path,
// keeping a trailing slash on the endpoint.
func (c *Client) resolveURL(endpoint string, query url.Values) string {
	u := c.baseURL.JoinPath(endpoint)
	if strings.HasSuffix(endpoint, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// captureResponse saves the API response body to a file if capturing is enabled.
// The filename is generated from the endpoint name.
func (c *Client) captureResponse(endpoint string, body []byte) {
	if c.captureDir == "" {
		return
	}

	// Sanitize endpoint for filename
	filename := strings.Trim(endpoint, "/")
	filename = strings.ReplaceAll(filename, "/", "_")
	timestamp := time.Now().Format("20060102_150405.000000")
	filename = fmt.Sprintf("%s_%s.json", filename, timestamp)

	path := filepath.Join(c.captureDir, filename)

	// Pretty-print JSON if possible
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err == nil {
		body = prettyJSON.Bytes()
	}

	// WriteFile error is non-critical for capturing - log and continue
	if err := os.WriteFile(path, body, constants.CaptureFileMode); err != nil {
		c.logger.Warn("failed to capture response", "path", path, "error", err)
	}
}
