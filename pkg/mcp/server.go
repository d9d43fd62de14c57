// Package mcp exposes a store as Model Context Protocol tools over stdio.
package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/bubbly/pkg/store"
)

// Server wraps an mcp-go server whose tools operate on one store.
type Server struct {
	mcpServer *server.MCPServer
	handlers  *Handlers
}

// NewServer creates a server with every bubbly tool registered.
func NewServer(st *store.Store, version string, firstWeekday time.Weekday) *Server {
	s := server.NewMCPServer(
		"Bubbly MCP Server",
		version,
		server.WithLogging(),
		server.WithRecovery(),
	)

	h := NewHandlers(st, firstWeekday)
	RegisterTools(s, h)

	return &Server{mcpServer: s, handlers: h}
}

// Start runs the stdio event loop until stdin closes.
func (s *Server) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *Server) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}
