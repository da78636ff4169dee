package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var shareCmd = &cobra.Command{
	Use:   "share <job-id>",
	Short: "Mark a comparison job as shared",
	Long: `Mark a comparison job of this session as shared and print the confirmation.

Sharing cannot be undone from this client.`,
	Args: cobra.ExactArgs(1),
	RunE: runShare,
}

func init() {
	rootCmd.AddCommand(shareCmd)
}

func runShare(cmd *cobra.Command, args []string) error {
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

	confirmation, err := a.compare.Share(ctx, args[0], sessionID)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(confirmation)
		return nil
	}
	fmt.Printf("Comparison %s is shared\n", confirmation.ID)
	if confirmation.ShareURL != "" {
		fmt.Printf("  URL: %s\n", confirmation.ShareURL)
	}
	return nil
}
