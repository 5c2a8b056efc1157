package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ludo-technologies/astdiff/internal/version"
	"github.com/ludo-technologies/astdiff/mcp"
)

const serverName = "astdiff"

func main() {
	configPath := flag.String("config", "", "Configuration file path (default: nearest .astdiff.toml)")
	flag.Parse()

	// MCP uses stdout for JSON-RPC
	logger := log.New(os.Stderr, "", log.LstdFlags)

	server := mcpserver.NewMCPServer(
		serverName,
		version.Short(),
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	mcp.RegisterTools(server, mcp.NewHandlerSet(mcp.NewDependencies(*configPath, logger)))

	logger.Printf("Starting %s MCP server %s", serverName, version.Short())
	logger.Println("Registered tools: diff_files, diff_sources, diff_directories, list_matchers")

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
