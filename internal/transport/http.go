package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kozaktomas/face-compare/internal/apierr"
)

// Request describes one outbound call.
type Request struct {
	Method string
	// Endpoint is the path after the base URL, e.g. "api/compare/status/123/".
	Endpoint string
	Query    url.Values
	Body     io.Reader
	// ContentType is set when Body is not nil.
	ContentType string
	// ContentLength is sent when positive.
	ContentLength int64
}

// Do sends r and returns the response status and body. Non-2xx responses
// and transport failures are returned as *apierr.Error.
func (c *Client) Do(ctx context.Context, r Request) (int, []byte, error) {
	target := c.resolveURL(r.Endpoint, r.Query)

	req, err := http.NewRequestWithContext(ctx, r.Method, target, r.Body)
	if err != nil {
		return 0, nil, c.normalizer.Normalize(apierr.Failure{Err: fmt.Errorf("could not create request: %w", err)})
	}
	req.Header = c.headers.Clone()
	if r.Body != nil && r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
	if r.ContentLength > 0 {
		req.ContentLength = r.ContentLength
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated baseURL via resolveURL
	if err != nil {
		c.logger.DebugContext(ctx, "request failed", "method", r.Method, "endpoint", r.Endpoint,
			"duration", time.Since(start), "error", err)
		return 0, nil, c.normalizer.Normalize(apierr.Failure{Err: err, Sent: true})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// The status line arrived but the body did not; classify as a transport failure.
		return 0, nil, c.normalizer.Normalize(apierr.Failure{
			Err:  fmt.Errorf("could not read response body: %w", err),
			Sent: true,
		})
	}

	c.logger.DebugContext(ctx, "request completed", "method", r.Method, "endpoint", r.Endpoint,
		"status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))
	c.captureResponse(r.Endpoint, body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, c.normalizer.Normalize(apierr.Failure{
			StatusCode: resp.StatusCode,
			Body:       body,
			Sent:       true,
		})
	}
	return resp.StatusCode, body, nil
}

// GetJSON performs a GET request and unmarshals the JSON response into the result type.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (*T, error) {
	return doJSON[T](ctx, c, Request{Method: http.MethodGet, Endpoint: endpoint, Query: query})
}

// PostJSON performs a POST request with a JSON body and unmarshals the JSON response.
func PostJSON[T any](ctx context.Context, c *Client, endpoint string, query url.Values, requestBody any) (*T, error) {
	r := Request{Method: http.MethodPost, Endpoint: endpoint, Query: query}
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return nil, c.Invalid(fmt.Errorf("could not marshal request body: %w", err))
		}
		r.Body = bytes.NewReader(jsonBody)
		r.ContentType = "application/json"
		r.ContentLength = int64(len(jsonBody))
	}
	return doJSON[T](ctx, c, r)
}

func doJSON[T any](ctx context.Context, c *Client, r Request) (*T, error) {
	status, body, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	return decode[T](c, status, body)
}

// decode unmarshals a success body; an undecodable body is an invalid envelope.
func decode[T any](c *Client, status int, body []byte) (*T, error) {
	var result T
	if len(bytes.TrimSpace(body)) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, c.normalizer.Normalize(apierr.Failure{
			StatusCode: status,
			Body:       body,
			Err:        fmt.Errorf("%w: %w", apierr.ErrInvalidEnvelope, err),
			Sent:       true,
		})
	}
	return &result, nil
}
