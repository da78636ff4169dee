package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-compare/internal/compare"
)

var submitCmd = &cobra.Command{
	Use:   "submit <photo>",
	Short: "Upload a photo and start a comparison job",
	Long: `Upload a photo to the comparison service and print the created job.

With --wait the job is polled until it completes and the best matching
celebrities are printed. Size and type of the photo are checked by the
service, not by this client.

Examples:
  face-compare submit selfie.jpg
  face-compare submit selfie.jpg --wait
  face-compare submit selfie.jpg --wait --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().BoolP("wait", "w", false, "Wait for the comparison to finish")
	submitCmd.Flags().String("name", "", "File name sent with the photo (defaults to the base name of the path)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]
	wait := mustGetBool(cmd, "wait")
	name := mustGetString(cmd, "name")
	if name == "" {
		name = filepath.Base(path)
	}

	photo, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID, err := a.session(ctx)
	if err != nil {
		return err
	}

	bar := newPercentBar("Uploading")
	job, err := a.compare.Submit(ctx, compare.UploadRequest{
		PhotoBytes: photo,
		FileName:   name,
		SessionID:  sessionID,
	}, func(percent int) {
		_ = bar.Set(percent)
	})
	if err != nil {
		_ = bar.Exit()
		return err
	}
	_ = bar.Finish()

	a.logger.Info("comparison job created", "job", job.ID, "state", job.State)

	if wait && !job.Done() {
		job, err = follow(ctx, a, string(job.ID), sessionID)
		if err != nil {
			return err
		}
	}

	printJob(job)
	return finished(job)
}
