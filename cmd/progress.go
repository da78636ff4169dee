package cmd

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// newPercentBar returns a 0-100 bar on stderr. With --json the bar is
// discarded so stdout stays machine readable.
func newPercentBar(description string) *progressbar.ProgressBar {
	var out io.Writer = os.Stderr
	if jsonOutput {
		out = io.Discard
	}

	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(out, "\n")
		}),
	)
}
