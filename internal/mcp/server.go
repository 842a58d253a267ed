// Package mcp exposes the workout data read-only to LLM clients over the
// Model Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("IronPath", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("IronPath workout tracker. Query workout history, the in-progress session, personal records, and XP/rank progression. All data belongs to the single local user."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetProgression, Handler: h.getProgression},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetCurrentSession, Handler: h.getCurrentSession},
		server.ServerTool{Tool: toolCompareRecentWorkouts, Handler: h.compareRecentWorkouts},
	)

	s.AddResources(
		server.ServerResource{Resource: resProgression, Handler: h.progressionResource},
		server.ServerResource{Resource: resRecentHistory, Handler: h.recentHistoryResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resProgression = mcp.NewResource(
	"ironpath://progression",
	"Progression",
	mcp.WithResourceDescription("Current level, rank and XP progress toward the next rank"),
	mcp.WithMIMEType("application/json"),
)

var resRecentHistory = mcp.NewResource(
	"ironpath://recent_history",
	"Recent History",
	mcp.WithResourceDescription("The ten most recent finalized workouts"),
	mcp.WithMIMEType("application/json"),
)
