package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/koraki/internal/mcp/handlers"
)

func registerTools(s *server.MCPServer, deps *Deps) {
	// integration_status: Linked state and plan tier
	s.AddTool(
		mcp.NewTool("integration_status",
			mcp.WithDescription("Show whether this site is linked to a Koraki application, and on which plan."),
		),
		handlers.IntegrationStatus(deps.Status),
	)

	// get_post_opt_in: Read a post's notification flag
	s.AddTool(
		mcp.NewTool("get_post_opt_in",
			mcp.WithDescription("Tell whether publishing or updating a post creates a Koraki notification."),
			mcp.WithNumber("post_id",
				mcp.Required(),
				mcp.Description("Host post id"),
			),
		),
		handlers.GetPostOptIn(deps.OptIns),
	)

	// set_post_opt_in: Opt a post in or out
	s.AddTool(
		mcp.NewTool("set_post_opt_in",
			mcp.WithDescription("Opt a post in or out of Koraki notifications. Takes effect on the next publish or update."),
			mcp.WithNumber("post_id",
				mcp.Required(),
				mcp.Description("Host post id"),
			),
			mcp.WithBoolean("enabled",
				mcp.Required(),
				mcp.Description("true to notify Koraki when the post is published"),
			),
		),
		handlers.SetPostOptIn(deps.OptIns),
	)
}
