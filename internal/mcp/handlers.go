package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/matdash/matdash/internal/smbclient"
)

// handleAskDashboard forwards a question to the chat backend.
func (s *Server) handleAskDashboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	reply, err := s.chat.Query(ctx, query)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	text := reply.Answer
	if len(reply.Data) > 0 {
		text += "\n\nData:\n" + string(reply.Data)
	}
	return mcp.NewToolResultText(text), nil
}

// handleBrowseFiles lists one directory of the share.
func (s *Server) handleBrowseFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")

	listing, err := s.files.Browse(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("browse failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatListing(listing)), nil
}

// handleFolderTree returns the bounded folder structure as text.
func (s *Server) handleFolderTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	depth := request.GetInt("max_depth", s.treeDepth)
	if depth <= 0 {
		depth = s.treeDepth
	}

	structure, err := s.files.Structure(ctx, path, depth)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("structure fetch failed: %v", err)), nil
	}
	if len(structure) == 0 {
		return mcp.NewToolResultText("No subfolders."), nil
	}

	var sb strings.Builder
	writeTree(&sb, structure, 0)
	return mcp.NewToolResultText(sb.String()), nil
}

// handleTestConnection probes the share.
func (s *Server) handleTestConnection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.files.TestConnection(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("connection test failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Connected to \\\\%s\\%s (%d top-level folders).",
		info.Server, info.Share, info.FoldersCount,
	)), nil
}

// formatListing converts a directory listing into text an agent can
// scan quickly.
func formatListing(listing *smbclient.Listing) string {
	var sb strings.Builder
	path := listing.Path
	if path == "" {
		path = "/"
	}
	fmt.Fprintf(&sb, "Listing of %s: %d folder(s), %d file(s)\n", path, len(listing.Folders), len(listing.Files))

	for _, folder := range listing.Folders {
		fmt.Fprintf(&sb, "\n[dir]  %s", folder)
	}
	for _, file := range listing.Files {
		fmt.Fprintf(&sb, "\n[file] %s (%s, modified %s)", file.Name, file.SizeReadable, file.ModifiedReadable)
	}
	return sb.String()
}

func writeTree(sb *strings.Builder, nodes map[string]*smbclient.StructureNode, depth int) {
	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(sb, "%s%s/\n", strings.Repeat("  ", depth), name)
		if sub := nodes[name].Subfolders; len(sub) > 0 {
			writeTree(sb, sub, depth+1)
		}
	}
}
