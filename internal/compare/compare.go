// Package compare implements the comparison job lifecycle against the face
// comparison service: submission, status queries, result retrieval, history,
// sharing and the celebrity catalog.
//
// Every operation takes the session token explicitly and returns either a
// decoded value or an *apierr.Error. Nothing is retried here; scheduling and
// retry policy belong to the caller.
package compare

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

// Service endpoints, relative to the base URL.
const (
	submitEndpoint      = "api/compare/"
	resultPrefix        = "api/compare/"
	statusPrefix        = "api/compare/status/"
	historyEndpoint     = "api/compare/history/"
	sharePrefix         = "api/compare/share/"
	celebritiesEndpoint = "api/celebrities/"
)

var (
	errMissingSession = errors.New("session id is required")
	errMissingJob     = errors.New("job id is required")
	errMissingID      = errors.New("celebrity id is required")
)

// Client runs lifecycle operations over a transport channel.
type Client struct {
	t *transport.Client
}

// New creates a Client on t.
func New(t *transport.Client) *Client {
	return &Client{t: t}
}

// Transport returns the underlying channel.
func (c *Client) Transport() *transport.Client {
	return c.t
}

// jobEndpoint builds "<prefix><escaped id>/".
func jobEndpoint(prefix, jobID string) string {
	return prefix + url.PathEscape(jobID) + "/"
}

func sessionQuery(sessionID string) url.Values {
	return url.Values{"session_id": {sessionID}}
}

// checkIDs rejects calls that cannot address a job.
func (c *Client) checkIDs(jobID, sessionID string) error {
	if jobID == "" {
		return c.t.Invalid(errMissingJob)
	}
	if sessionID == "" {
		return c.t.Invalid(errMissingSession)
	}
	return nil
}

// checkEnvelope validates a decoded job returned for jobID on behalf of
// sessionID. An empty state is allowed only when allowLegacy is set.
func (c *Client) checkEnvelope(job *Job, jobID, sessionID string, allowLegacy bool) error {
	if job.SessionID != "" && job.SessionID != sessionID {
		return c.t.Reject(http.StatusOK, apierr.ErrSessionMismatch)
	}
	if job.ID != "" && string(job.ID) != jobID {
		return c.t.Reject(http.StatusOK, fmt.Errorf("%w: asked for job %q, got %q", apierr.ErrInvalidEnvelope, jobID, job.ID))
	}
	if job.State == "" && allowLegacy {
		return nil
	}
	if !job.State.Known() {
		return c.t.Reject(http.StatusOK, fmt.Errorf("%w: unknown job state %q", apierr.ErrInvalidEnvelope, job.State))
	}
	return nil
}
