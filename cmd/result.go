package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result <job-id>",
	Short: "Fetch the full record of a comparison job",
	Long: `Fetch the full record of a comparison job, including its matches when the
job has completed.

Extra query parameters can be passed with --param. The session token is
always the one of this client.

Examples:
  face-compare result 42
  face-compare result 42 --param lang=zh`,
	Args: cobra.ExactArgs(1),
	RunE: runResult,
}

func init() {
	rootCmd.AddCommand(resultCmd)

	resultCmd.Flags().StringSlice("param", nil, "Extra query parameter as key=value (repeatable)")
}

func runResult(cmd *cobra.Command, args []string) error {
	extra, err := parseParams(mustGetStringSlice(cmd, "param"))
	if err != nil {
		return err
	}

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

	job, err := a.compare.Result(ctx, args[0], sessionID, extra)
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}

// parseParams turns key=value pairs into query values.
func parseParams(params []string) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}
	values := url.Values{}
	for _, p := range params {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		values.Add(key, value)
	}
	return values, nil
}
