package compare

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

type shareRequest struct {
	SessionID string `json:"session_id"`
}

// Share marks a job as publicly shared. Calling it again on a shared job
// succeeds and leaves it shared. There is no inverse operation. A success
// answer without a body, such as 204 No Content, confirms the share.
func (c *Client) Share(ctx context.Context, jobID, sessionID string) (*ShareConfirmation, error) {
	if err := c.checkIDs(jobID, sessionID); err != nil {
		return nil, err
	}

	conf, err := transport.PostJSON[ShareConfirmation](ctx, c.t, jobEndpoint(sharePrefix, jobID),
		sessionQuery(sessionID), shareRequest{SessionID: sessionID})
	if err != nil {
		return nil, apierr.JobScoped(err)
	}
	if conf.declined {
		return nil, c.t.Reject(http.StatusOK, fmt.Errorf("%w: job %s reported as not shared", apierr.ErrInvalidEnvelope, jobID))
	}
	conf.IsShared = true
	if conf.ID == "" {
		conf.ID = ID(jobID)
	}
	return conf, nil
}
