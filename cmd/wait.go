package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-compare/internal/compare"
)

var waitCmd = &cobra.Command{
	Use:   "wait <job-id>",
	Short: "Poll a comparison job until it completes or fails",
	Long: `Poll the status of a comparison job until it reaches COMPLETED or FAILED,
then print the job with its matches.

Polling starts at the configured interval and slows down while the job makes
no progress. Transient network failures are tolerated up to a limit.`,
	Args: cobra.ExactArgs(1),
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
}

func runWait(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	sessionID, err := a.session(ctx)
	if err != nil {
		return err
	}

	job, err := follow(ctx, a, args[0], sessionID)
	if err != nil {
		return err
	}
	printJob(job)
	return finished(job)
}

// follow polls jobID to a terminal state, drawing progress on a bar, and
// fetches the result when the final status carried none.
func follow(ctx context.Context, a *app, jobID, sessionID string) (*compare.Job, error) {
	bar := newPercentBar("Comparing")
	job, err := a.watcher(func(j *compare.Job) {
		if j.State != "" {
			bar.Describe(fmt.Sprintf("Comparing (%s)", j.State))
		}
		_ = bar.Set(j.Progress)
	}).Wait(ctx, jobID, sessionID)
	if err != nil {
		_ = bar.Exit()
		return nil, err
	}
	if job.State == compare.StateCompleted {
		_ = bar.Finish()
	} else {
		_ = bar.Exit()
	}

	if job.State == compare.StateCompleted && job.Result == nil {
		return a.compare.Result(ctx, jobID, sessionID, nil)
	}
	return job, nil
}

// finished turns a FAILED job into a command error.
func finished(job *compare.Job) error {
	if job.State != compare.StateFailed {
		return nil
	}
	if job.Error != "" {
		return fmt.Errorf("comparison %s failed: %s", job.ID, job.Error)
	}
	return fmt.Errorf("comparison %s failed", job.ID)
}
