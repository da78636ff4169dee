package compare

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/transport"
)

// Submit uploads a photo and creates a comparison job. progress, when not
// nil, receives upload percentages 0-100.
//
// Size and type of the photo are validated by the service. Submission is
// never retried: a repeated upload would create a second job.
func (c *Client) Submit(ctx context.Context, req UploadRequest, progress transport.ProgressFunc) (*Job, error) {
	if req.SessionID == "" {
		return nil, c.t.Invalid(errMissingSession)
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = "photo"
	}
	form := &transport.Form{
		Fields: []transport.Field{{Name: "session_id", Value: req.SessionID}},
		Files:  []transport.File{{Field: "photo", FileName: fileName, Data: req.PhotoBytes}},
	}

	// A 404 here means no catalog entry matched, so it stays an
	// application error.
	job, err := transport.PostMultipart[Job](ctx, c.t, submitEndpoint, form, progress)
	if err != nil {
		return nil, err
	}

	if job.ID == "" {
		return nil, c.t.Reject(http.StatusOK, fmt.Errorf("%w: job has no id", apierr.ErrInvalidEnvelope))
	}
	if err := c.checkEnvelope(job, string(job.ID), req.SessionID, true); err != nil {
		return nil, err
	}
	job.settle(string(job.ID))
	return job, nil
}
