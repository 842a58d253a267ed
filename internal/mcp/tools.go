package mcp

import (
	"context"
	"fmt"
	"math"

	"github.com/claude/ironpath/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetProgression = mcp.NewTool("get_progression",
	mcp.WithDescription("Get the user's current level, rank, total XP and progress percentage toward the next rank."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Query finalized workouts, newest first. Each record includes volume, calories, XP, minutes, EPOC bonus calories and session type."),
	mcp.WithString("type", mcp.Description("Filter by session type"), mcp.Enum("cardio", "strength")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of records to return. Defaults to 20.")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Get the best effective weight (and reps at that weight) per exercise."),
)

var toolGetCurrentSession = mcp.NewTool("get_current_session",
	mcp.WithDescription("Get the sets of the in-progress workout, newest first, with their computed volume, calories and XP."),
)

var toolCompareRecentWorkouts = mcp.NewTool("compare_recent_workouts",
	mcp.WithDescription("Compare the two most recent workouts of a session type: minutes for cardio, volume for strength. Returns the relative change in percent."),
	mcp.WithString("type", mcp.Required(), mcp.Description("Session type to compare"), mcp.Enum("cardio", "strength")),
)

// --- Tool handlers ---

func (h *handlers) getProgression(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	level, err := h.ds.Progression(ctx)
	if err != nil {
		h.log.Error("mcp get_progression", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(level)
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if typeFilter := req.GetString("type", ""); typeFilter != "" {
		filtered := history[:0:0]
		for _, rec := range history {
			if string(rec.SessionType) == typeFilter {
				filtered = append(filtered, rec)
			}
		}
		history = filtered
	}

	limit := req.GetInt("limit", 20)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return toolJSON(history)
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(records)
}

func (h *handlers) getCurrentSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := h.ds.Session(ctx)
	if err != nil {
		h.log.Error("mcp get_current_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(session)
}

func (h *handlers) compareRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeStr, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError("type parameter is required"), nil
	}
	sessionType := models.SessionType(typeStr)

	history, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp compare_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var matched []models.WorkoutRecord
	for _, rec := range history {
		if rec.SessionType == sessionType {
			matched = append(matched, rec)
			if len(matched) == 2 {
				break
			}
		}
	}
	if len(matched) < 2 {
		return mcp.NewToolResultText(fmt.Sprintf("fewer than two %s workouts in history, nothing to compare", typeStr)), nil
	}

	latest, previous := matched[0], matched[1]
	var current, prev float64
	metric := "totalVolume"
	if sessionType == models.SessionCardio {
		current, prev = float64(latest.TotalMinutes), float64(previous.TotalMinutes)
		metric = "totalMinutes"
	} else {
		current, prev = latest.TotalVolume, previous.TotalVolume
	}

	result := map[string]any{
		"metric":   metric,
		"latest":   latest,
		"previous": previous,
	}
	if prev > 0 {
		diff := (current - prev) / prev * 100
		result["diffPercent"] = math.Round(diff*100) / 100
	}
	return toolJSON(result)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return result, nil
}
