// Package watch waits for a comparison job to reach a terminal state by
// issuing repeated status queries. It owns the timer; the status operation
// itself stays a single idempotent call.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kozaktomas/face-compare/internal/apierr"
	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
)

// StatusQuerier is the status operation polled by a Watcher.
type StatusQuerier interface {
	Status(ctx context.Context, jobID, sessionID string) (*compare.Job, error)
}

// Options configures a Watcher. Zero values take the package defaults.
type Options struct {
	// Interval is the delay after a poll that reported a change.
	Interval time.Duration
	// MaxInterval caps the delay while polls report no change.
	MaxInterval time.Duration
	// MaxErrors is the number of consecutive timeouts or network failures
	// tolerated. Negative disables tolerance.
	MaxErrors int
	// OnUpdate receives every successfully polled job.
	OnUpdate func(*compare.Job)
	// Normalizer words the error returned on cancellation; defaults to English.
	Normalizer *apierr.Normalizer
	Clock      clockwork.Clock
	Logger     *slog.Logger
}

// Watcher polls one job at a time until it is done.
type Watcher struct {
	querier  StatusQuerier
	interval time.Duration
	max      time.Duration
	maxErrs  int
	onUpdate func(*compare.Job)
	norm     *apierr.Normalizer
	clock    clockwork.Clock
	logger   *slog.Logger
}

// New creates a Watcher polling q.
func New(q StatusQuerier, opts Options) *Watcher {
	w := &Watcher{
		querier:  q,
		interval: opts.Interval,
		max:      opts.MaxInterval,
		maxErrs:  opts.MaxErrors,
		onUpdate: opts.OnUpdate,
		norm:     opts.Normalizer,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
	if w.interval <= 0 {
		w.interval = constants.DefaultPollInterval
	}
	if w.max <= 0 {
		w.max = max(constants.DefaultPollMaxInterval, w.interval)
	}
	w.max = max(w.max, w.interval)
	if w.maxErrs == 0 {
		w.maxErrs = constants.DefaultPollMaxErrors
	}
	if w.clock == nil {
		w.clock = clockwork.NewRealClock()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// retryable reports whether a failed status query may simply be repeated.
func retryable(err error) bool {
	switch apierr.KindOf(err) {
	case apierr.KindTimeout, apierr.KindNetworkUnreachable:
		return true
	}
	return false
}

// Wait polls the job until it is done and returns the last envelope. The
// first query is issued immediately. Application and authorization errors
// end the wait at once.
func (w *Watcher) Wait(ctx context.Context, jobID, sessionID string) (*compare.Job, error) {
	var (
		delay        = w.interval
		lastState    compare.State
		lastProgress = -1
		failures     int
	)

	for attempt := 1; ; attempt++ {
		job, err := w.querier.Status(ctx, jobID, sessionID)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, w.norm.Normalize(apierr.Failure{Err: ctx.Err(), Sent: true})
			}
			failures++
			if !retryable(err) || failures > w.maxErrs {
				return nil, err
			}
			w.logger.WarnContext(ctx, "status query failed, retrying",
				"job", jobID, "attempt", attempt, "failures", failures, "delay", delay, "error", err)

		default:
			failures = 0
			if w.onUpdate != nil {
				w.onUpdate(job)
			}
			if job.Done() {
				return job, nil
			}

			if attempt == 1 || job.State != lastState || job.Progress != lastProgress {
				delay = w.interval
			} else {
				delay = min(time.Duration(float64(delay)*constants.PollBackoffFactor), w.max)
			}
			lastState, lastProgress = job.State, job.Progress
			w.logger.DebugContext(ctx, "job not done",
				"job", jobID, "state", job.State, "progress", job.Progress, "next", delay)
		}

		select {
		case <-w.clock.After(delay):
		case <-ctx.Done():
			return nil, w.norm.Normalize(apierr.Failure{Err: ctx.Err(), Sent: true})
		}
	}
}
