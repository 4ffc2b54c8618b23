package mcp

import "github.com/mark3labs/mcp-go/mcp"

// askDashboardTool defines the ask_dashboard MCP tool.
var askDashboardTool = mcp.NewTool("ask_dashboard",
	mcp.WithDescription("Ask the business dashboard a natural language question about invoices, orders and deliveries."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language question"),
	),
)

// browseFilesTool defines the browse_files MCP tool.
var browseFilesTool = mcp.NewTool("browse_files",
	mcp.WithDescription("List the folders and files at a path on the document share."),
	mcp.WithString("path",
		mcp.Description("Path relative to the share root (empty for the root)"),
	),
)

// folderTreeTool defines the folder_tree MCP tool.
var folderTreeTool = mcp.NewTool("folder_tree",
	mcp.WithDescription("Get the folder structure under a path, bounded to a few levels."),
	mcp.WithString("path",
		mcp.Description("Path relative to the share root (empty for the root)"),
	),
	mcp.WithNumber("max_depth",
		mcp.Description("How many levels to descend (default 2)"),
	),
)

// connectionTool defines the test_connection MCP tool.
var connectionTool = mcp.NewTool("test_connection",
	mcp.WithDescription("Check that the document share is reachable."),
)
