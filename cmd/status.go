package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Query the current status of a comparison job",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	job, err := a.compare.Status(ctx, args[0], sessionID)
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}
