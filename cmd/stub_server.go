package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-compare/internal/compare"
	"github.com/kozaktomas/face-compare/internal/constants"
	"github.com/kozaktomas/face-compare/internal/logging"
	"github.com/kozaktomas/face-compare/internal/stub"
)

var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Start a local stand-in for the comparison service",
	Long: `Start a local HTTP server that speaks the comparison service's API.

Jobs stay PENDING for --pending-for, then report rising progress while
PROCESSING and are COMPLETED once --complete-after has passed since the
upload. Status and result queries never change a job. Matches are derived
from the uploaded bytes, so the same photo always gives the same result.
Uploads that are not images end as FAILED jobs.

Examples:
  face-compare stub-server --port 8000
  face-compare stub-server --catalog celebrities.yaml
  face-compare --api-url http://localhost:8000 submit me.jpg --wait`,
	Args: cobra.NoArgs,
	RunE: runStubServer,
}

func init() {
	rootCmd.AddCommand(stubServerCmd)

	stubServerCmd.Flags().Int("port", 8000, "Port to listen on")
	stubServerCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	stubServerCmd.Flags().String("catalog", "", "YAML or JSON celebrity catalog (defaults to a built-in catalog)")
	stubServerCmd.Flags().StringSlice("allowed-origin", nil, "Extra CORS origin besides localhost (repeatable)")
	stubServerCmd.Flags().Duration("pending-for", constants.StubPendingFor, "How long a new job stays PENDING")
	stubServerCmd.Flags().Duration("complete-after", constants.StubCompleteAfter, "Time from upload until a job is COMPLETED")
}

func runStubServer(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	logger := logging.InitLogger(cfg.Log.Level, cfg.Log.Format)

	port, host, err := resolveStubHostPort(cmd)
	if err != nil {
		return err
	}

	var catalog []compare.Celebrity
	if path := mustGetString(cmd, "catalog"); path != "" {
		loaded, err := stub.LoadCatalog(path)
		if err != nil {
			return err
		}
		catalog = loaded
		fmt.Printf("Loaded %d celebrities from %s\n", len(catalog), path)
	}

	server := stub.NewServer(stub.Options{
		Host:           host,
		Port:           port,
		Catalog:        catalog,
		AllowedOrigins: mustGetStringSlice(cmd, "allowed-origin"),
		PendingFor:     mustGetDuration(cmd, "pending-for"),
		CompleteAfter:  mustGetDuration(cmd, "complete-after"),
		Logger:         logger,
	})

	// Execute cancels the command context on SIGINT and SIGTERM.
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-cmd.Context().Done():
		case <-stopped:
			return
		}
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting comparison stub on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}

// resolveStubHostPort resolves port and host from flags and environment variables.
func resolveStubHostPort(cmd *cobra.Command) (int, string, error) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if !cmd.Flags().Changed("port") {
		if envPort := os.Getenv("STUB_PORT"); envPort != "" {
			parsed, err := strconv.Atoi(envPort)
			if err != nil {
				return 0, "", fmt.Errorf("invalid STUB_PORT %q: %w", envPort, err)
			}
			port = parsed
		}
	}
	if port < 1 || port > 65535 {
		return 0, "", fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if !cmd.Flags().Changed("host") {
		if envHost := os.Getenv("STUB_HOST"); envHost != "" {
			host = envHost
		}
	}
	return port, host, nil
}
