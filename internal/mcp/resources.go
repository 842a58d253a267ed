package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) progressionResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	level, err := h.ds.Progression(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, level)
}

func (h *handlers) recentHistoryResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	history, err := h.ds.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) > 10 {
		history = history[:10]
	}
	return jsonResource(req.Params.URI, history)
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
