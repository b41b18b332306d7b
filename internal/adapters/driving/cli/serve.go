package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/nova/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/nova/internal/adapters/driving/mcp"
)

// sweepInterval is how often the long-running service purges expired
// cache entries.
const sweepInterval = 10 * time.Minute

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP search service",
	Long: `Serves JSON search over HTTP until interrupted.

  GET  /search?q=...&limit=N
  POST /search {"query": "...", "limit": N}
  GET  /stats
  GET  /healthz
  GET  /metrics     Prometheus metrics
       /mcp         MCP over streamable HTTP

Responses rank exactly like "nova search" for the same query and limit.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.Settings.Server.Addr
	}

	mcpServer, err := mcp.NewServer(&mcp.Ports{Search: a.Search, Index: a.Store})
	if err != nil {
		return err
	}

	server, err := httpapi.New(a.Search,
		httpapi.WithIndex(a.Store),
		httpapi.WithMCP(mcpServer.Handler()),
	)
	if err != nil {
		return err
	}

	go a.RunSweeper(cmd.Context(), sweepInterval)

	cmd.PrintErrf("Serving on http://%s\n", addr)
	return server.ListenAndServe(cmd.Context(), addr)
}
