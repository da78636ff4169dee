package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-compare/internal/apierr"
)

var (
	captureDir string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "face-compare",
	Short: "A CLI client for the celebrity face comparison service",
	Long: `Face Compare uploads a photo to the face comparison service, follows the
comparison job until it finishes and prints the best matching celebrities.

Jobs and history are scoped to an anonymous session token that is created on
first use and kept in a local store (a file by default).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Comparison service address (env FACECOMPARE_API_URL)")
	flags.Duration("timeout", 0, "Upper bound for each request (env FACECOMPARE_TIMEOUT)")
	flags.String("locale", "", "Locale of fixed error messages, e.g. en or zh (env FACECOMPARE_LOCALE)")
	flags.String("session-store", "", "Session store: file, memory, redis or sqlite (env FACECOMPARE_SESSION_STORE)")
	flags.String("session-path", "", "Session file or database path (env FACECOMPARE_SESSION_PATH)")
	flags.String("session-id", "", "Use this session token instead of the stored one")
	flags.String("log-level", "", "Log level: debug, info, warn, error (env LOG_LEVEL)")
	flags.String("log-format", "", "Log format: text or json (env LOG_FORMAT)")
	flags.StringVar(&captureDir, "capture", "", "Directory to save API responses for testing")
	flags.BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// printError writes err to stderr, as JSON when --json is set.
func printError(err error) {
	if jsonOutput {
		payload := map[string]any{"kind": "Error", "message": err.Error()}
		if e, ok := apierr.As(err); ok {
			payload["kind"] = e.Kind
			if status, ok := e.StatusCode(); ok {
				payload["httpStatus"] = status
			} else {
				payload["httpStatus"] = nil
			}
		}
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(payload)
		return
	}

	if e, ok := apierr.As(err); ok {
		fmt.Fprintf(os.Stderr, "Error (%s): %s\n", e.Kind, e.Message)
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
}
