package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Qubut/IP-Claim/packages/epo_mcp/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the OPS tools over the configured MCP transport",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.New(Version, services.Tools)
	if err := server.Serve(ctx, srv, cfg.Server, logger); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

