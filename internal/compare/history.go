package compare

import (
	"context"
	"sort"
	"time"

	"github.com/kozaktomas/face-compare/internal/transport"
)

// History lists past jobs of sessionID, most recent first. Entries the
// service attributes to another session are dropped, and a job id appears
// at most once.
func (c *Client) History(ctx context.Context, sessionID string) ([]Job, error) {
	if sessionID == "" {
		return nil, c.t.Invalid(errMissingSession)
	}

	entries, err := transport.GetJSON[list[Job]](ctx, c.t, historyEndpoint, sessionQuery(sessionID))
	if err != nil {
		return nil, err
	}

	seen := make(map[ID]struct{}, len(*entries))
	jobs := make([]Job, 0, len(*entries))
	for _, job := range *entries {
		if job.SessionID != "" && job.SessionID != sessionID {
			continue
		}
		if job.ID == "" {
			continue
		}
		if _, dup := seen[job.ID]; dup {
			continue
		}
		seen[job.ID] = struct{}{}
		job.settle(string(job.ID))
		jobs = append(jobs, job)
	}

	sortNewestFirst(jobs)
	return jobs, nil
}

// sortNewestFirst orders jobs by created_at descending when every job has a
// parseable timestamp. Otherwise the service order is kept.
func sortNewestFirst(jobs []Job) {
	stamps := make([]time.Time, len(jobs))
	for i, job := range jobs {
		ts, err := time.Parse(time.RFC3339Nano, job.CreatedAt)
		if err != nil {
			return
		}
		stamps[i] = ts
	}

	idx := make([]int, len(jobs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return stamps[idx[a]].After(stamps[idx[b]])
	})

	sorted := make([]Job, len(jobs))
	for i, j := range idx {
		sorted[i] = jobs[j]
	}
	copy(jobs, sorted)
}
