package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/koraki/internal/settings"
)

// OptInStore reads and writes per-post opt-in flags.
type OptInStore interface {
	OptIn(ctx context.Context, postID int64) (string, error)
	SetOptIn(ctx context.Context, postID int64, value string) error
}

// GetPostOptIn returns a handler reporting a post's opt-in flag.
func GetPostOptIn(store OptInStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		postID, err := postIDArg(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		value, err := store.OptIn(ctx, postID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to read opt-in flag: %s", err)), nil
		}

		if value == settings.OptInEnabled {
			return mcp.NewToolResultText(fmt.Sprintf("Post %d is opted in: publishing it notifies Koraki.", postID)), nil
		}
		if value == "" {
			return mcp.NewToolResultText(fmt.Sprintf("Post %d has no opt-in flag: publishing it does not notify Koraki.", postID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Post %d is opted out (flag %q).", postID, value)), nil
	}
}

// SetPostOptIn returns a handler writing a post's opt-in flag.
func SetPostOptIn(store OptInStore) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()

		postID, err := postIDArg(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		enabled, ok := args["enabled"].(bool)
		if !ok {
			return mcp.NewToolResultError("enabled is required (true or false)"), nil
		}

		value := strconv.FormatBool(enabled)
		if err := store.SetOptIn(ctx, postID, value); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to store opt-in flag: %s", err)), nil
		}

		if enabled {
			return mcp.NewToolResultText(fmt.Sprintf("Post %d opted in.", postID)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Post %d opted out.", postID)), nil
	}
}

func postIDArg(args map[string]any) (int64, error) {
	var id int64
	switch v := args["post_id"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("post_id must be an integer")
		}
		id = int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("post_id must be an integer")
		}
		id = n
	default:
		return 0, fmt.Errorf("post_id is required")
	}
	if id <= 0 {
		return 0, fmt.Errorf("post_id must be positive")
	}
	return id, nil
}
