package compare

import (
	"context"
	"net/url"

	"github.com/kozaktomas/face-compare/internal/transport"
)

// Celebrities lists the comparison catalog.
func (c *Client) Celebrities(ctx context.Context) ([]Celebrity, error) {
	result, err := transport.GetJSON[list[Celebrity]](ctx, c.t, celebritiesEndpoint, nil)
	if err != nil {
		return nil, err
	}
	return *result, nil
}

// Celebrity retrieves a single catalog entry.
func (c *Client) Celebrity(ctx context.Context, id string) (*Celebrity, error) {
	if id == "" {
		return nil, c.t.Invalid(errMissingID)
	}
	return transport.GetJSON[Celebrity](ctx, c.t, celebritiesEndpoint+url.PathEscape(id)+"/", nil)
}
