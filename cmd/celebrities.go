package cmd

import (
	"github.com/spf13/cobra"
)

var celebritiesCmd = &cobra.Command{
	Use:     "celebrities [id]",
	Aliases: []string{"celebs"},
	Short:   "List the celebrity catalog or show one entry",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runCelebrities,
}

func init() {
	rootCmd.AddCommand(celebritiesCmd)
}

func runCelebrities(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if len(args) == 1 {
		celebrity, err := a.compare.Celebrity(ctx, args[0])
		if err != nil {
			return err
		}
		printCelebrity(celebrity)
		return nil
	}

	celebrities, err := a.compare.Celebrities(ctx)
	if err != nil {
		return err
	}
	printCelebrities(celebrities)
	return nil
}
