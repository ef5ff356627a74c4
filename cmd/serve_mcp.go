package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdekker/adocgen/internal/mcpserver"
	"github.com/mdekker/adocgen/internal/packaging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the element index over MCP (stdio)",
	Long: `Collects the configured packages, builds the element index and exposes
it to MCP clients with find_element and list_elements tools.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	packages, err := collectPackages(cmd.Context(), cfg)
	if err != nil {
		log.Fatalf("collecting packages: %v", err)
	}

	workspace := packaging.NewWorkspace(".", packages)
	resolver, err := buildResolver(cmd.Context(), workspace)
	if err != nil {
		log.Fatalf("building element index: %v", err)
	}

	server := mcpserver.NewServer(resolver)

	errCh := make(chan error)
	go func() { errCh <- server.Run() }()

	if err := waitForSignal(errCh); err != nil {
		log.Fatalf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}

func waitForSignal(errCh chan error) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Printf("received signal: %s", sig)
		return nil
	case err := <-errCh:
		return err
	}
}
