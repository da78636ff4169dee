package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Print the session token used for comparisons",
	Long: `Print the anonymous session token this client sends with every request.

The token is created on first use and stored per service address, so later
runs see the same history.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	token, err := a.session(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]string{"session_id": token, "service": a.transport.Origin()})
		return nil
	}
	fmt.Println(token)
	return nil
}
