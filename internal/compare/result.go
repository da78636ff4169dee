package compare

import (
	"context"
	"net/url"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

// Result fetches the comparison artifact of a job. extra is appended to the
// query for forward-compatible hints such as a locale; it cannot replace
// session_id.
//
// The call is valid before the job is terminal. The returned Result is nil
// unless the job is COMPLETED, or the service answered with a legacy
// envelope that has no state.
func (c *Client) Result(ctx context.Context, jobID, sessionID string, extra url.Values) (*Job, error) {
	if err := c.checkIDs(jobID, sessionID); err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, vs := range extra {
		if k == "session_id" {
			continue
		}
		query[k] = append([]string(nil), vs...)
	}
	query.Set("session_id", sessionID)

	job, err := transport.GetJSON[Job](ctx, c.t, jobEndpoint(resultPrefix, jobID), query)
	if err != nil {
		return nil, apierr.JobScoped(err)
	}
	if err := c.checkEnvelope(job, jobID, sessionID, true); err != nil {
		return nil, err
	}
	job.settle(jobID)
	return job, nil
}
