package mcp

import (
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/folio-cms/folio/internal/content"
)

// MCPServer exposes the portfolio content to MCP clients. Every tool and
// resource is read-only; edits go through the session-protected HTTP API.
type MCPServer struct {
	content *content.Content
	logger  *slog.Logger
	server  *server.MCPServer
}

// NewMCPServer creates an MCPServer with all folio tools and resources
// registered. The returned server is ready to serve over stdio or HTTP.
func NewMCPServer(c *content.Content, version string, logger *slog.Logger) *MCPServer {
	s := &MCPServer{
		content: c,
		logger:  logger,
	}

	mcpServer := server.NewMCPServer(
		"Folio Portfolio Content",
		version,
		server.WithResourceCapabilities(true, false),
		server.WithToolCapabilities(false),
	)

	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.server = mcpServer
	return s
}

// Server returns the underlying mcp-go MCPServer instance.
func (s *MCPServer) Server() *server.MCPServer {
	return s.server
}

// ServeStdio serves MCP over stdin/stdout until the client disconnects.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server in stdio mode")
	return server.ServeStdio(s.server)
}

// Handler returns a Streamable HTTP handler for mounting on the API router.
func (s *MCPServer) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.server, server.WithStateLess(true))
}

func readOnlyAnnotation() mcp.ToolAnnotation {
	return mcp.ToolAnnotation{
		ReadOnlyHint:   boolPtr(true),
		IdempotentHint: boolPtr(true),
	}
}

func boolPtr(b bool) *bool {
	return &b
}
