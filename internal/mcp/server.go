// Package mcp exposes the dashboard's backends as MCP tools so agents
// can query business data and browse the share over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/matdash/matdash/internal/chatclient"
	"github.com/matdash/matdash/internal/smbclient"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server over the chat and file service clients.
type Server struct {
	chat      *chatclient.Client
	files     *smbclient.Client
	treeDepth int
	mcp       *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(chat *chatclient.Client, files *smbclient.Client, treeDepth int) *Server {
	s := &Server{
		chat:      chat,
		files:     files,
		treeDepth: treeDepth,
	}

	s.mcp = server.NewMCPServer(
		"matdash",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askDashboardTool, s.handleAskDashboard)
	s.mcp.AddTool(browseFilesTool, s.handleBrowseFiles)
	s.mcp.AddTool(folderTreeTool, s.handleFolderTree)
	s.mcp.AddTool(connectionTool, s.handleTestConnection)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
