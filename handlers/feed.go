// ABOUTME: Home feed, inbox, insight, and graph MCP tools
// ABOUTME: Implements home_feed, complete_action, the inbox tools, refresh_insights, and circles_graph

package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/feed"
	"github.com/harperreed/dofo/insights"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/viz"
)

type HomeFeedInput struct{}

type HomeFeedOutput struct {
	Greeting       string         `json:"greeting"`
	Name           string         `json:"name,omitempty"`
	Headline       string         `json:"headline"`
	Pending        []ActionOutput `json:"pending"`
	Completed      []ActionOutput `json:"completed"`
	PendingCount   int            `json:"pending_count"`
	CompletedCount int            `json:"completed_count"`
	Progress       int            `json:"progress"`
}

func (h *Handlers) HomeFeed(ctx context.Context, request *mcp.CallToolRequest, input HomeFeedInput) (*mcp.CallToolResult, HomeFeedOutput, error) {
	f, err := feed.Build(ctx, h.set.Actions, h.userName(), h.now())
	if err != nil {
		return nil, HomeFeedOutput{}, err
	}

	out := HomeFeedOutput{
		Greeting:       f.Greeting,
		Name:           f.Name,
		Headline:       f.Headline(),
		Pending:        make([]ActionOutput, len(f.Pending)),
		Completed:      make([]ActionOutput, len(f.Completed)),
		PendingCount:   f.PendingCount,
		CompletedCount: f.CompletedCount,
		Progress:       f.Progress,
	}
	for i := range f.Pending {
		out.Pending[i] = feedItemToOutput(&f.Pending[i])
	}
	for i := range f.Completed {
		out.Completed[i] = feedItemToOutput(&f.Completed[i])
	}
	return nil, out, nil
}

// userName is the saved display name, or empty when there is no state store.
func (h *Handlers) userName() string {
	if h.state == nil {
		return ""
	}
	prefs, err := h.state.Preferences()
	if err != nil {
		h.logger.Warn("failed to read preferences", zap.Error(err))
		return ""
	}
	return prefs.Name
}

type IDInput struct {
	ID string `json:"id" jsonschema:"ID of the item"`
}

type CompleteActionOutput struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
	Progress  int    `json:"progress"`
}

func (h *Handlers) CompleteAction(ctx context.Context, request *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, CompleteActionOutput, error) {
	if input.ID == "" {
		return nil, CompleteActionOutput{}, fmt.Errorf("id is required")
	}
	if err := h.set.Actions.Complete(ctx, input.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, CompleteActionOutput{}, fmt.Errorf("action %s not found", input.ID)
		}
		return nil, CompleteActionOutput{}, fmt.Errorf("failed to complete action: %w", err)
	}

	f, err := feed.Build(ctx, h.set.Actions, "", h.now())
	if err != nil {
		return nil, CompleteActionOutput{}, err
	}
	return nil, CompleteActionOutput{ID: input.ID, Completed: true, Progress: f.Progress}, nil
}

type ListInboxInput struct {
	IncludeDismissed bool `json:"include_dismissed,omitempty" jsonschema:"Also return dismissed items"`
}

type ListInboxOutput struct {
	Items []InboxItemOutput `json:"items"`
}

func (h *Handlers) ListInbox(ctx context.Context, request *mcp.CallToolRequest, input ListInboxInput) (*mcp.CallToolResult, ListInboxOutput, error) {
	items, err := h.set.Inbox.List(ctx, input.IncludeDismissed)
	if err != nil {
		return nil, ListInboxOutput{}, fmt.Errorf("failed to list inbox: %w", err)
	}

	now := h.now()
	out := ListInboxOutput{Items: make([]InboxItemOutput, len(items))}
	for i := range items {
		out.Items[i] = inboxToOutput(&items[i], now)
	}
	return nil, out, nil
}

type DismissInboxItemOutput struct {
	ID        string `json:"id"`
	Dismissed bool   `json:"dismissed"`
}

func (h *Handlers) DismissInboxItem(ctx context.Context, request *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, DismissInboxItemOutput, error) {
	if input.ID == "" {
		return nil, DismissInboxItemOutput{}, fmt.Errorf("id is required")
	}
	if err := h.set.Inbox.Dismiss(ctx, input.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, DismissInboxItemOutput{}, fmt.Errorf("inbox item %s not found", input.ID)
		}
		return nil, DismissInboxItemOutput{}, fmt.Errorf("failed to dismiss inbox item: %w", err)
	}
	return nil, DismissInboxItemOutput{ID: input.ID, Dismissed: true}, nil
}

type ActOnInboxItemInput struct {
	ID     string `json:"id" jsonschema:"ID of the inbox item"`
	Action int    `json:"action,omitempty" jsonschema:"Which suggested action to take, starting at 1 (default 1)"`
}

func (h *Handlers) ActOnInboxItem(ctx context.Context, request *mcp.CallToolRequest, input ActOnInboxItemInput) (*mcp.CallToolResult, ActionOutput, error) {
	if input.ID == "" {
		return nil, ActionOutput{}, fmt.Errorf("id is required")
	}
	choice := input.Action
	if choice == 0 {
		choice = 1
	}

	a, err := insights.Act(ctx, h.set.Inbox, h.set.Actions, input.ID, choice-1)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ActionOutput{}, fmt.Errorf("inbox item %s not found", input.ID)
	}
	if err != nil {
		return nil, ActionOutput{}, err
	}
	return nil, actionToOutput(a, h.now()), nil
}

type RefreshInsightsInput struct{}

type RefreshInsightsOutput struct {
	Inbox   []InboxItemOutput `json:"inbox"`
	Actions []ActionOutput    `json:"actions"`
}

func (h *Handlers) RefreshInsights(ctx context.Context, request *mcp.CallToolRequest, input RefreshInsightsInput) (*mcp.CallToolResult, RefreshInsightsOutput, error) {
	now := h.now()
	res, err := h.refresher().Refresh(ctx, now)
	if err != nil {
		return nil, RefreshInsightsOutput{}, err
	}

	out := RefreshInsightsOutput{
		Inbox:   make([]InboxItemOutput, len(res.Inbox)),
		Actions: make([]ActionOutput, len(res.Actions)),
	}
	for i := range res.Inbox {
		out.Inbox[i] = inboxToOutput(&res.Inbox[i], now)
	}
	for i := range res.Actions {
		out.Actions[i] = actionToOutput(&res.Actions[i], now)
	}
	return nil, out, nil
}

type CirclesGraphInput struct {
	PersonID string `json:"person_id,omitempty" jsonschema:"Center the graph on this person's circles"`
}

type CirclesGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *Handlers) CirclesGraph(ctx context.Context, request *mcp.CallToolRequest, input CirclesGraphInput) (*mcp.CallToolResult, CirclesGraphOutput, error) {
	var (
		dot   string
		stats viz.Stats
		err   error
	)
	if input.PersonID != "" {
		dot, stats, err = h.graphs.GeneratePersonGraph(ctx, input.PersonID)
	} else {
		dot, stats, err = h.graphs.GenerateCirclesGraph(ctx)
	}
	if err != nil {
		return nil, CirclesGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	return nil, CirclesGraphOutput{DOTSource: dot, NodeCount: stats.Nodes, EdgeCount: stats.Edges}, nil
}
