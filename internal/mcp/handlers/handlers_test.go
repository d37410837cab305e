package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolapsis/koraki/internal/link"
	"github.com/kolapsis/koraki/internal/settings"
)

func makeReq(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return result.Content[0].(mcp.TextContent).Text
}

type stubStatus struct {
	status link.Status
	err    error
}

func (s stubStatus) Status(context.Context) (link.Status, error) { return s.status, s.err }

func (s stubStatus) DashboardURL(id string) string { return "https://app.koraki.test/view/" + id }

func newTestStore(t *testing.T) *settings.SQLiteStore {
	t.Helper()
	store, err := settings.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// --- IntegrationStatus tests ---

func TestIntegrationStatus_WhenLinked_ShowsPlanAndDashboard(t *testing.T) {
	t.Parallel()
	handler := IntegrationStatus(stubStatus{status: link.Status{
		Linked:        true,
		ClientID:      "cid",
		ApplicationID: "app-3",
		Plan:          link.PlanPersonal,
	}})

	result, err := handler(context.Background(), makeReq(nil))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "Linked to Koraki")
	assert.Contains(t, text, "Personal Plan")
	assert.Contains(t, text, "https://app.koraki.test/view/app-3")
	assert.False(t, result.IsError)
}

func TestIntegrationStatus_WhenUnlinked_SaysSo(t *testing.T) {
	t.Parallel()
	handler := IntegrationStatus(stubStatus{})

	result, err := handler(context.Background(), makeReq(nil))
	require.NoError(t, err)

	assert.Contains(t, resultText(t, result), "Not linked")
}

func TestIntegrationStatus_WhenStoreFails_ReturnsError(t *testing.T) {
	t.Parallel()
	handler := IntegrationStatus(stubStatus{err: errors.New("locked")})

	result, err := handler(context.Background(), makeReq(nil))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "locked")
}

// --- opt-in tests ---

func TestSetPostOptIn_ThenGet(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	result, err := SetPostOptIn(store)(context.Background(), makeReq(map[string]any{
		"post_id": float64(12),
		"enabled": true,
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Post 12 opted in")

	value, err := store.OptIn(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, settings.OptInEnabled, value)

	result, err = GetPostOptIn(store)(context.Background(), makeReq(map[string]any{"post_id": float64(12)}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "opted in")
}

func TestSetPostOptIn_Disable(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := SetPostOptIn(store)(context.Background(), makeReq(map[string]any{
		"post_id": "12",
		"enabled": false,
	}))
	require.NoError(t, err)

	value, err := store.OptIn(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "false", value)

	result, err := GetPostOptIn(store)(context.Background(), makeReq(map[string]any{"post_id": float64(12)}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "opted out")
}

func TestGetPostOptIn_WhenUnset_ReportsNoFlag(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	result, err := GetPostOptIn(store)(context.Background(), makeReq(map[string]any{"post_id": float64(99)}))
	require.NoError(t, err)

	assert.Contains(t, resultText(t, result), "no opt-in flag")
}

func TestOptInHandlers_RejectBadArguments(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing post id", map[string]any{"enabled": true}, "post_id is required"},
		{"fractional post id", map[string]any{"post_id": 1.5, "enabled": true}, "must be an integer"},
		{"negative post id", map[string]any{"post_id": float64(-1), "enabled": true}, "must be positive"},
		{"missing enabled", map[string]any{"post_id": float64(1)}, "enabled is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := SetPostOptIn(store)(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}
