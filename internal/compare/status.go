package compare

import (
	"context"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

// Status queries the current state of a job owned by sessionID. It is a
// read-only call, safe to repeat at any time including after the job
// reached a terminal state.
//
// A job unknown to the service or owned by another session yields an
// AuthorizationError; an envelope without a recognizable state yields an
// ApplicationError.
func (c *Client) Status(ctx context.Context, jobID, sessionID string) (*Job, error) {
	if err := c.checkIDs(jobID, sessionID); err != nil {
		return nil, err
	}

	job, err := transport.GetJSON[Job](ctx, c.t, jobEndpoint(statusPrefix, jobID), sessionQuery(sessionID))
	if err != nil {
		return nil, apierr.JobScoped(err)
	}
	if err := c.checkEnvelope(job, jobID, sessionID, false); err != nil {
		return nil, err
	}
	job.settle(jobID)
	return job, nil
}
