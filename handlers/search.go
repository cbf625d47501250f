// ABOUTME: Search box MCP tools
// ABOUTME: Implements classify_intent, search, and format_relative

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dofo/timefmt"
)

type ClassifyIntentInput struct {
	Text string `json:"text" jsonschema:"Free text typed into the search box"`
}

type ClassifyIntentOutput struct {
	Intent  string `json:"intent"`
	Keyword string `json:"keyword,omitempty"`
}

func (h *Handlers) ClassifyIntent(_ context.Context, request *mcp.CallToolRequest, input ClassifyIntentInput) (*mcp.CallToolResult, ClassifyIntentOutput, error) {
	m := h.classifier.Explain(input.Text)
	return nil, ClassifyIntentOutput{Intent: string(m.Intent), Keyword: m.Keyword}, nil
}

type SearchInput struct {
	Query string `json:"query" jsonschema:"Search text, a capture such as 'Remember: Rahul likes hiking', or a question"`
}

type SearchResultOutput struct {
	Type           string  `json:"type"`
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Date           string  `json:"date,omitempty"`
	RelevanceScore float64 `json:"relevance_score"`
	PersonID       string  `json:"person_id,omitempty"`
}

type SearchOutput struct {
	Query       string               `json:"query"`
	Intent      string               `json:"intent,omitempty"`
	Keyword     string               `json:"keyword,omitempty"`
	Results     []SearchResultOutput `json:"results"`
	Suggestions map[string][]string  `json:"suggestions,omitempty"`
	Captured    *NoteOutput          `json:"captured,omitempty"`
}

func (h *Handlers) Search(ctx context.Context, request *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := h.engine.Run(ctx, input.Query, h.now())
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("failed to run search: %w", err)
	}

	out := SearchOutput{
		Query:   resp.Query,
		Intent:  string(resp.Intent),
		Keyword: resp.Keyword,
		Results: make([]SearchResultOutput, 0, len(resp.Results)),
	}
	for _, r := range resp.Results {
		out.Results = append(out.Results, SearchResultOutput{
			Type:           r.Type,
			ID:             r.ID,
			Title:          r.Title,
			Description:    r.Description,
			Date:           formatTimePtr(r.Date),
			RelevanceScore: r.RelevanceScore,
			PersonID:       r.PersonID,
		})
	}
	if len(resp.Suggestions) > 0 {
		out.Suggestions = make(map[string][]string, len(resp.Suggestions))
		for k, v := range resp.Suggestions {
			out.Suggestions[string(k)] = v
		}
	}
	if resp.Captured != nil {
		n := noteToOutput(resp.Captured)
		out.Captured = &n
	}

	return nil, out, nil
}

type FormatRelativeInput struct {
	Target    string `json:"target,omitempty" jsonschema:"RFC3339 timestamp or YYYY-MM-DD; empty means no date"`
	Reference string `json:"reference,omitempty" jsonschema:"Reference time (default now)"`
	Direction string `json:"direction" jsonschema:"future for due dates, past for last contact"`
}

type FormatRelativeOutput struct {
	Label string `json:"label"`
}

func (h *Handlers) FormatRelative(_ context.Context, request *mcp.CallToolRequest, input FormatRelativeInput) (*mcp.CallToolResult, FormatRelativeOutput, error) {
	dir, err := timefmt.ParseDirection(input.Direction)
	if err != nil {
		return nil, FormatRelativeOutput{}, err
	}

	reference := input.Reference
	if strings.TrimSpace(reference) == "" {
		reference = formatTime(h.now())
	}

	label, err := timefmt.FormatRelativeString(input.Target, reference, dir)
	if err != nil {
		return nil, FormatRelativeOutput{}, err
	}
	return nil, FormatRelativeOutput{Label: label}, nil
}
