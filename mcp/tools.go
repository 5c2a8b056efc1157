package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func matchingOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("matcher",
			mcp.Description("Matching strategy: gumtree, gumtree-complete, gumtree-hungarian or zs (default: gumtree)")),
		mcp.WithString("language",
			mcp.Description("Front-end to use instead of detecting it from file names, e.g. python, go, yaml")),
		mcp.WithNumber("min_height",
			mcp.Description("Minimum subtree height for exact subtree matching (default: 0)")),
		mcp.WithNumber("sim_threshold",
			mcp.Description("Minimum dice similarity for bottom-up matching, 0.0-1.0 (default: 0.5)")),
		mcp.WithBoolean("strict",
			mcp.Description("Fail when the edit script does not reproduce the target (default: false)")),
		mcp.WithBoolean("permute",
			mcp.Description("Report sibling reorders as permute actions (default: false)")),
		mcp.WithBoolean("include_mappings",
			mcp.Description("Include node mappings in the result (default: false)")),
		mcp.WithBoolean("classify",
			mcp.Description("Include deleted/inserted/updated/moved classification (default: false)")),
	}
}

// RegisterTools registers all astdiff MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	if h == nil {
		h = NewHandlerSet(nil)
	}

	// diff_files: structural diff of two files on disk
	s.AddTool(mcp.NewTool("diff_files", append([]mcp.ToolOption{
		mcp.WithDescription("Structural diff of two source files: returns the edit script (insert, delete, update, move) between their syntax trees"),
		mcp.WithString("source_path",
			mcp.Required(),
			mcp.Description("Path of the original file")),
		mcp.WithString("target_path",
			mcp.Required(),
			mcp.Description("Path of the modified file")),
	}, matchingOptions()...)...), h.HandleDiffFiles)

	// diff_sources: structural diff of two in-memory snippets
	s.AddTool(mcp.NewTool("diff_sources", append([]mcp.ToolOption{
		mcp.WithDescription("Structural diff of two code snippets passed inline"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Original source text")),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Modified source text")),
	}, matchingOptions()...)...), h.HandleDiffSources)

	// diff_directories: file-by-file diff of two directories
	s.AddTool(mcp.NewTool("diff_directories", append([]mcp.ToolOption{
		mcp.WithDescription("Diff every file two directories have in common and list files added or deleted"),
		mcp.WithString("source_dir",
			mcp.Required(),
			mcp.Description("Original directory")),
		mcp.WithString("target_dir",
			mcp.Required(),
			mcp.Description("Modified directory")),
		mcp.WithArray("include",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Doublestar patterns of files to compare (default: all supported languages)")),
		mcp.WithArray("exclude",
			mcp.Items(map[string]interface{}{"type": "string"}),
			mcp.Description("Doublestar patterns of files and directories to skip")),
		mcp.WithBoolean("recursive",
			mcp.Description("Descend into subdirectories (default: true)")),
	}, matchingOptions()...)...), h.HandleDiffDirectories)

	// list_matchers: registered strategies and languages
	s.AddTool(mcp.NewTool("list_matchers",
		mcp.WithDescription("List the available matching strategies and supported languages with their file patterns"),
	), h.HandleListMatchers)
}
