// ABOUTME: People MCP tools
// ABOUTME: Implements list_people, get_person, log_interaction, and the promise tools

package handlers

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

type ListPeopleInput struct {
	Relation string `json:"relation,omitempty" jsonschema:"Filter by relation: family, close, friends, work, other, or all"`
	Sort     string `json:"sort,omitempty" jsonschema:"Sort by name, lastContact, or healthScore (default)"`
}

type ListPeopleOutput struct {
	People  []PersonOutput `json:"people"`
	Summary people.Summary `json:"summary"`
}

func (h *Handlers) ListPeople(ctx context.Context, request *mcp.CallToolRequest, input ListPeopleInput) (*mcp.CallToolResult, ListPeopleOutput, error) {
	if input.Relation != "" && input.Relation != people.FilterAll && !slices.Contains(models.Relations, input.Relation) {
		return nil, ListPeopleOutput{}, fmt.Errorf("unknown relation %q", input.Relation)
	}
	order, err := people.ParseSort(input.Sort)
	if err != nil {
		return nil, ListPeopleOutput{}, err
	}

	all, err := h.set.People.List(ctx)
	if err != nil {
		return nil, ListPeopleOutput{}, fmt.Errorf("failed to list people: %w", err)
	}

	now := h.now()
	list := people.Filter(all, input.Relation)
	people.Sort(list, order)

	out := ListPeopleOutput{
		People:  make([]PersonOutput, len(list)),
		Summary: people.Stats(all, now, h.policy),
	}
	for i := range list {
		out.People[i] = personToOutput(&list[i], now, h.policy)
	}
	return nil, out, nil
}

type GetPersonInput struct {
	ID   string `json:"id,omitempty" jsonschema:"Person ID"`
	Name string `json:"name,omitempty" jsonschema:"Name to look up when no ID is given"`
}

type PersonDetailOutput struct {
	Person       PersonOutput        `json:"person"`
	Urgency      urgency.Status      `json:"urgency"`
	Notes        []NoteOutput        `json:"notes"`
	Promises     []PromiseOutput     `json:"promises"`
	Interactions []InteractionOutput `json:"interactions"`
	Actions      []ActionOutput      `json:"actions"`
}

func (h *Handlers) GetPerson(ctx context.Context, request *mcp.CallToolRequest, input GetPersonInput) (*mcp.CallToolResult, PersonDetailOutput, error) {
	p, err := h.resolvePerson(ctx, input.ID, input.Name)
	if err != nil {
		return nil, PersonDetailOutput{}, err
	}

	actions, err := h.set.Actions.ListByPerson(ctx, p.ID)
	if err != nil {
		return nil, PersonDetailOutput{}, fmt.Errorf("failed to list actions: %w", err)
	}

	now := h.now()
	out := PersonDetailOutput{
		Person:       personToOutput(p, now, h.policy),
		Urgency:      urgency.Evaluate(p, now, h.policy),
		Notes:        make([]NoteOutput, len(p.Notes)),
		Promises:     make([]PromiseOutput, len(p.Promises)),
		Interactions: make([]InteractionOutput, len(p.Interactions)),
		Actions:      make([]ActionOutput, len(actions)),
	}
	for i := range p.Notes {
		out.Notes[i] = noteToOutput(&p.Notes[i])
	}
	for i := range p.Promises {
		out.Promises[i] = promiseToOutput(&p.Promises[i], now)
	}
	for i := range p.Interactions {
		out.Interactions[i] = interactionToOutput(&p.Interactions[i], now)
	}
	for i := range actions {
		out.Actions[i] = actionToOutput(&actions[i], now)
	}
	return nil, out, nil
}

// resolvePerson finds a person by id, or by name when the name matches exactly one person.
func (h *Handlers) resolvePerson(ctx context.Context, id, name string) (*models.Person, error) {
	p, err := people.Lookup(ctx, h.set.People, id, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		// Name matches come back without history.
		return h.set.People.Get(ctx, p.ID)
	}
	return p, nil
}

type LogInteractionInput struct {
	PersonID    string `json:"person_id" jsonschema:"Person ID"`
	Type        string `json:"type" jsonschema:"call, message, meeting, email, photo, or gift"`
	Description string `json:"description" jsonschema:"What happened"`
	Sentiment   string `json:"sentiment,omitempty" jsonschema:"positive, neutral, or negative"`
	Date        string `json:"date,omitempty" jsonschema:"When it happened (default now)"`
}

type LogInteractionOutput struct {
	Interaction InteractionOutput `json:"interaction"`
	Person      PersonOutput      `json:"person"`
}

func (h *Handlers) LogInteraction(ctx context.Context, request *mcp.CallToolRequest, input LogInteractionInput) (*mcp.CallToolResult, LogInteractionOutput, error) {
	at := h.now()
	if strings.TrimSpace(input.Date) != "" {
		t, err := timefmt.ParseTimestamp(input.Date)
		if err != nil {
			return nil, LogInteractionOutput{}, fmt.Errorf("invalid date: %w", err)
		}
		at = t
	}
	in, err := people.NewInteraction(input.Type, input.Description, input.Sentiment, at)
	if err != nil {
		return nil, LogInteractionOutput{}, err
	}

	if err := h.set.People.LogInteraction(ctx, input.PersonID, in); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, LogInteractionOutput{}, fmt.Errorf("person %s not found", input.PersonID)
		}
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to log interaction: %w", err)
	}

	p, err := h.set.People.Get(ctx, input.PersonID)
	if err != nil {
		return nil, LogInteractionOutput{}, fmt.Errorf("failed to reload person: %w", err)
	}

	h.logger.Info("interaction logged",
		zap.String("person_id", input.PersonID),
		zap.String("type", in.Type))

	now := h.now()
	return nil, LogInteractionOutput{
		Interaction: interactionToOutput(in, now),
		Person:      personToOutput(p, now, h.policy),
	}, nil
}

type AddPromiseInput struct {
	PersonID    string `json:"person_id" jsonschema:"Person the promise was made to"`
	Description string `json:"description" jsonschema:"What you promised"`
	DueDate     string `json:"due_date" jsonschema:"When it is due (RFC3339 or YYYY-MM-DD)"`
	Priority    string `json:"priority,omitempty" jsonschema:"high, medium (default), or low"`
}

func (h *Handlers) AddPromise(ctx context.Context, request *mcp.CallToolRequest, input AddPromiseInput) (*mcp.CallToolResult, PromiseOutput, error) {
	due, err := timefmt.ParseTimestamp(input.DueDate)
	if err != nil {
		return nil, PromiseOutput{}, fmt.Errorf("invalid due date: %w", err)
	}
	pr, err := people.NewPromise(input.Description, due, input.Priority)
	if err != nil {
		return nil, PromiseOutput{}, err
	}

	if err := h.set.People.AddPromise(ctx, input.PersonID, pr); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, PromiseOutput{}, fmt.Errorf("person %s not found", input.PersonID)
		}
		return nil, PromiseOutput{}, fmt.Errorf("failed to add promise: %w", err)
	}
	return nil, promiseToOutput(pr, h.now()), nil
}

type CompletePromiseOutput struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

func (h *Handlers) CompletePromise(ctx context.Context, request *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, CompletePromiseOutput, error) {
	if input.ID == "" {
		return nil, CompletePromiseOutput{}, fmt.Errorf("id is required")
	}
	if err := h.set.People.CompletePromise(ctx, input.ID, h.now()); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, CompletePromiseOutput{}, fmt.Errorf("promise %s not found", input.ID)
		}
		return nil, CompletePromiseOutput{}, fmt.Errorf("failed to complete promise: %w", err)
	}
	return nil, CompletePromiseOutput{ID: input.ID, Completed: true}, nil
}
