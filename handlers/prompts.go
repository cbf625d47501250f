// ABOUTME: MCP prompts for reusable relationship workflows
// ABOUTME: draft-message writes to one person; weekly-review walks everyone who is overdue

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

func (h *Handlers) registerPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "draft-message",
		Description: "Draft a message to someone using their recent history and your preferred tone",
		Arguments: []*mcp.PromptArgument{
			{Name: "person_id", Description: "Person to write to", Required: true},
			{Name: "occasion", Description: "Why you are reaching out (optional)"},
		},
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "weekly-review",
		Description: "Review who is overdue for contact and which promises are slipping",
	}, h.GetPrompt)
}

// GetPrompt generates the prompt message based on the template.
func (h *Handlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "draft-message":
		return h.draftMessagePrompt(ctx, request.Params.Arguments)
	case "weekly-review":
		return h.weeklyReviewPrompt(ctx)
	}
	return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
}

func (h *Handlers) draftMessagePrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	id := args["person_id"]
	if id == "" {
		return nil, fmt.Errorf("person_id is required")
	}
	p, err := h.resolvePerson(ctx, id, "")
	if err != nil {
		return nil, err
	}

	tone := "casual"
	if h.state != nil {
		if prefs, err := h.state.Preferences(); err == nil {
			tone = prefs.DefaultTone
		}
	}

	now := h.now()
	st := urgency.Evaluate(p, now, h.policy)

	var b strings.Builder
	fmt.Fprintf(&b, "Help me write a %s message to %s (%s).\n\n", tone, p.Name, p.Relation)
	if occasion := strings.TrimSpace(args["occasion"]); occasion != "" {
		fmt.Fprintf(&b, "Occasion: %s\n", occasion)
	}
	if st.DaysSinceContact >= 0 {
		fmt.Fprintf(&b, "Last contact: %d days ago (we usually talk every %d days)\n", st.DaysSinceContact, st.CadenceDays)
	}
	if m := p.NextMilestone; m != nil {
		fmt.Fprintf(&b, "Coming up: %s on %s\n", m.Description, m.Date.Format("January 2"))
	}
	if len(p.Tags) > 0 {
		fmt.Fprintf(&b, "Interests: %s\n", strings.Join(p.Tags, ", "))
	}
	for _, n := range lastNotes(p, 3) {
		fmt.Fprintf(&b, "Note: %s\n", n.Content)
	}
	for _, pr := range p.OpenPromises() {
		fmt.Fprintf(&b, "Open promise: %s (due %s)\n", pr.Description, pr.DueDate.Format("Jan 2"))
	}
	b.WriteString("\nKeep it short and personal. Mention something specific from the notes if it fits.")

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Message draft for %s", p.Name),
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}

func lastNotes(p *models.Person, n int) []models.Note {
	if len(p.Notes) <= n {
		return p.Notes
	}
	return p.Notes[len(p.Notes)-n:]
}

func (h *Handlers) weeklyReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	list, err := h.set.People.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}

	now := h.now()
	var b strings.Builder
	b.WriteString("Here is where my relationships stand this week:\n\n")

	overdue := 0
	for i := range list {
		st := urgency.Evaluate(&list[i], now, h.policy)
		if st.Overdue {
			overdue++
			fmt.Fprintf(&b, "- %s (%s): %d days since contact, %d days past our usual rhythm\n",
				list[i].Name, list[i].Relation, st.DaysSinceContact, st.DaysOverdue)
		}
		for _, pr := range list[i].OpenPromises() {
			if pr.DueDate.Before(now) {
				fmt.Fprintf(&b, "- Promise to %s slipping: %s\n", list[i].FirstName(), pr.Description)
			}
		}
	}
	if overdue == 0 {
		b.WriteString("- Nobody is overdue for contact.\n")
	}
	b.WriteString("\nSuggest who to reach out to first and one concrete thing to do for each.")

	return &mcp.GetPromptResult{
		Description: "Weekly relationship review",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: b.String()}},
		},
	}, nil
}
