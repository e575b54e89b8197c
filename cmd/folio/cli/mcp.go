package cli

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/folio-cms/folio/internal/content"
	fmcp "github.com/folio-cms/folio/internal/mcp"
)

func newMCPCmd() *cobra.Command {
	var (
		transport string
		port      int
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start a read-only MCP server over the portfolio content",
		Long: `Start a Model Context Protocol (MCP) server that lets AI agents read the
portfolio: projects, skills, categories and the hero section. Nothing can be
changed through MCP.

In stdio mode the server talks JSON-RPC over stdin/stdout, suitable for Claude
Desktop and other local MCP clients. In HTTP mode it serves the Streamable HTTP
transport on the given port.`,
		Example: `  folio mcp                               # stdio mode
  folio mcp --transport http --port 3001  # Streamable HTTP`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(transport, port)
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport mode: stdio or http")
	cmd.Flags().IntVar(&port, "port", 3001, "HTTP port (only used with --transport http)")

	return cmd
}

func runMCP(transport string, port int) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	// stdout belongs to the protocol in stdio mode.
	logger := newLogger(os.Stderr, cfg.Logging, false)

	st, err := openStore(cfg.Store, false)
	if err != nil {
		return fmt.Errorf("init document store: %w", err)
	}
	defer st.Close()

	mcpSrv := fmcp.NewMCPServer(content.New(st), appVersion, logger)

	switch transport {
	case "stdio":
		return mcpSrv.ServeStdio()
	case "http":
		addr := fmt.Sprintf(":%d", port)
		logger.Info("starting MCP HTTP server", "addr", addr)
		mux := http.NewServeMux()
		mux.Handle("/mcp", mcpSrv.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported transport %q; use 'stdio' or 'http'", transport)
	}
}
