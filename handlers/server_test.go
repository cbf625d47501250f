// ABOUTME: End-to-end tests for the DoFo MCP server over in-memory transports
// ABOUTME: Exercises tool listing, tool calls, resources, and prompts through a real client session
package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/fixtures"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()

	h := New(fixtures.NewMemorySet(), zap.NewNop(), WithClock(func() time.Time { return fixtures.ReferenceTime }))
	srv := NewServer(h, "test")

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	_, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err, "server connect")

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err, "client connect")
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool returns the text content of a successful tool call.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, name)
	require.NotEmpty(t, result.Content, name)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	require.False(t, result.IsError, "%s returned error: %s", name, tc.Text)
	return tc.Text
}

func TestServerListsTools(t *testing.T) {
	session := connect(t)

	res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"classify_intent", "search", "format_relative", "list_people", "get_person",
		"log_interaction", "add_promise", "complete_promise", "home_feed",
		"complete_action", "list_inbox", "dismiss_inbox_item", "act_on_inbox_item",
		"refresh_insights", "circles_graph",
	}, names)
}

func TestServerSearchCapture(t *testing.T) {
	session := connect(t)

	text := callTool(t, session, "search", map[string]any{"query": "Note: Dad needs BP medication"})
	var out SearchOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, "add", out.Intent)
	require.NotNil(t, out.Captured)
	assert.Equal(t, "4", out.Captured.PersonID)
	assert.Equal(t, "Dad needs BP medication", out.Captured.Content)

	text = callTool(t, session, "get_person", map[string]any{"id": "4"})
	var detail PersonDetailOutput
	require.NoError(t, json.Unmarshal([]byte(text), &detail))
	assert.Len(t, detail.Notes, 2)
}

func TestServerFeedRoundTrip(t *testing.T) {
	session := connect(t)

	callTool(t, session, "complete_action", map[string]any{"id": "da3"})

	text := callTool(t, session, "home_feed", map[string]any{})
	var out HomeFeedOutput
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	assert.Equal(t, 4, out.PendingCount)
	assert.Equal(t, 1, out.CompletedCount)
	assert.Equal(t, 20, out.Progress)
	assert.Equal(t, "da3", out.Completed[0].ID)
}

func TestServerToolError(t *testing.T) {
	session := connect(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "dismiss_inbox_item",
		Arguments: map[string]any{"id": "missing"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "not found")
}

func TestServerResources(t *testing.T) {
	session := connect(t)
	ctx := context.Background()

	res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "dofo://people/3"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var detail PersonDetailOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &detail))
	assert.Equal(t, "Priya Kapoor", detail.Person.Name)

	res, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "dofo://inbox"})
	require.NoError(t, err)
	var inbox ListInboxOutput
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &inbox))
	assert.Len(t, inbox.Items, 4)

	_, err = session.ReadResource(ctx, &mcp.ReadResourceParams{URI: "dofo://people/99"})
	assert.Error(t, err)
}

func TestServerPrompts(t *testing.T) {
	session := connect(t)
	ctx := context.Background()

	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "draft-message",
		Arguments: map[string]string{"person_id": "3", "occasion": "Europe trip"},
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	tc, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "casual message to Priya Kapoor")
	assert.Contains(t, tc.Text, "Occasion: Europe trip")
	assert.Contains(t, tc.Text, "Open promise: Share design portfolio feedback")

	res, err = session.GetPrompt(ctx, &mcp.GetPromptParams{Name: "weekly-review"})
	require.NoError(t, err)
	tc, ok = res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, tc.Text, "Priya Kapoor (friends): 32 days since contact")
}
