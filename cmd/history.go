package cmd

import (
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the comparisons of this session, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 0, "Show at most this many comparisons (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit := mustGetInt(cmd, "limit")

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

	jobs, err := a.compare.History(ctx, sessionID)
	if err != nil {
		return err
	}
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	printHistory(jobs)
	return nil
}
