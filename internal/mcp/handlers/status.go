package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kolapsis/koraki/internal/link"
)

// StatusSource reports the credential link state.
type StatusSource interface {
	Status(ctx context.Context) (link.Status, error)
	DashboardURL(applicationID string) string
}

// IntegrationStatus returns a handler describing the Koraki link.
func IntegrationStatus(src StatusSource) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := src.Status(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load settings: %s", err)), nil
		}

		if !st.Linked {
			return mcp.NewToolResultText("🔌 Not linked to Koraki. Open the admin page to connect this site."), nil
		}

		var sb strings.Builder
		sb.WriteString("✅ Linked to Koraki\n\n")
		fmt.Fprintf(&sb, "- **Application:** %s\n", st.ApplicationID)
		fmt.Fprintf(&sb, "- **Client id:** %s\n", st.ClientID)
		fmt.Fprintf(&sb, "- **Plan:** %s\n", st.Plan.Label())
		fmt.Fprintf(&sb, "- **Dashboard:** %s\n", src.DashboardURL(st.ApplicationID))

		return mcp.NewToolResultText(sb.String()), nil
	}
}
