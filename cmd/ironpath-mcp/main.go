// ironpath-mcp runs an MCP server on stdio, backed by a running IronPath
// daemon reached over HTTP (typically a tailnet address). Point an MCP client
// at this binary to chat about workout history and progression.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironpath/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the IronPath server")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ds := mcp.NewHTTPClient(*baseURL)
	s := mcp.New(ds, Version, log)

	log.Info("ironpath-mcp serving stdio", "url", *baseURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
