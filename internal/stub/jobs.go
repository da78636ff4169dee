package stub

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
)

// stubJob is the server-side record of a comparison job. Its state is not
// stored: it is derived from the time elapsed since CreatedAt.
type stubJob struct {
	ID        string
	SessionID string
	IsShared  bool
	UserPhoto string
	CreatedAt time.Time
	// Matches become visible once the job completes.
	Matches []compare.Match
	// FailReason, when set, fails the job when processing would start.
	FailReason string
}

// JobManager manages comparison jobs. Jobs wait PENDING for pendingFor,
// then stay PROCESSING until completeAfter has elapsed since creation.
type JobManager struct {
	jobs          map[string]*stubJob
	mu            sync.RWMutex
	clock         clockwork.Clock
	pendingFor    time.Duration
	completeAfter time.Duration
}

// NewJobManager creates a new job manager. Non-positive durations take the
// defaults.
func NewJobManager(clock clockwork.Clock, pendingFor, completeAfter time.Duration) *JobManager {
	if pendingFor <= 0 {
		pendingFor = constants.StubPendingFor
	}
	if completeAfter <= 0 {
		completeAfter = constants.StubCompleteAfter
	}
	return &JobManager{
		jobs:          make(map[string]*stubJob),
		clock:         clock,
		pendingFor:    pendingFor,
		completeAfter: max(completeAfter, pendingFor),
	}
}

// view renders the job envelope as of now.
func (m *JobManager) view(j *stubJob) compare.Job {
	out := compare.Job{
		ID:        compare.ID(j.ID),
		SessionID: j.SessionID,
		State:     compare.StatePending,
		IsShared:  j.IsShared,
		UserPhoto: j.UserPhoto,
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339Nano),
	}

	elapsed := m.clock.Since(j.CreatedAt)
	switch {
	case elapsed < m.pendingFor:
	case j.FailReason != "":
		out.State = compare.StateFailed
		out.Error = j.FailReason
	case elapsed < m.completeAfter:
		out.State = compare.StateProcessing
		out.Progress = int(elapsed * 100 / m.completeAfter)
	default:
		out.State = compare.StateCompleted
		out.Progress = 100
		out.Result = &compare.Result{Details: append([]compare.Match(nil), j.Matches...)}
	}
	return out
}

// CreateJob registers a new job.
func (m *JobManager) CreateJob(job *stubJob) compare.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = job
	return m.view(job)
}

// owned returns the job when it exists and belongs to sessionID.
func (m *JobManager) owned(id, sessionID string) (*stubJob, bool) {
	job, ok := m.jobs[id]
	if !ok || job.SessionID != sessionID {
		return nil, false
	}
	return job, true
}

// GetJob returns the envelope of a job owned by sessionID.
func (m *JobManager) GetJob(id, sessionID string) (compare.Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.owned(id, sessionID)
	if !ok {
		return compare.Job{}, false
	}
	return m.view(job), true
}

// Share marks a job owned by sessionID as shared.
func (m *JobManager) Share(id, sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.owned(id, sessionID)
	if !ok {
		return false
	}
	job.IsShared = true
	return true
}

// ListJobs returns the jobs of sessionID, newest first.
func (m *JobManager) ListJobs(sessionID string) []compare.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := make([]*stubJob, 0)
	for _, job := range m.jobs {
		if job.SessionID == sessionID {
			owned = append(owned, job)
		}
	}
	sort.Slice(owned, func(a, b int) bool {
		if owned[a].CreatedAt.Equal(owned[b].CreatedAt) {
			return owned[a].ID < owned[b].ID
		}
		return owned[a].CreatedAt.After(owned[b].CreatedAt)
	})

	jobs := make([]compare.Job, len(owned))
	for i, job := range owned {
		jobs[i] = m.view(job)
	}
	return jobs
}
