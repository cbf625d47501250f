// ABOUTME: MCP tool handlers over the DoFo stores
// ABOUTME: Builds the server and converts models into JSON-friendly tool outputs

package handlers

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/insights"
	"github.com/harperreed/dofo/intent"
	"github.com/harperreed/dofo/search"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
	"github.com/harperreed/dofo/viz"
)

// Handlers holds the dependencies every tool shares.
type Handlers struct {
	set        store.Set
	state      *state.Store
	classifier *intent.Classifier
	engine     *search.Engine
	graphs     *viz.GraphGenerator
	logger     *zap.Logger
	policy     urgency.Policy
	now        func() time.Time
}

// Option configures Handlers.
type Option func(*Handlers)

// WithState lets home_feed greet the user by their saved name.
func WithState(s *state.Store) Option {
	return func(h *Handlers) { h.state = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *Handlers) { h.now = now }
}

// WithClassifier swaps the keyword classifier used by classify_intent and search.
func WithClassifier(c *intent.Classifier) Option {
	return func(h *Handlers) { h.classifier = c }
}

// WithPolicy sets the milestone window and default cadence.
func WithPolicy(p urgency.Policy) Option {
	return func(h *Handlers) { h.policy = p }
}

func New(set store.Set, logger *zap.Logger, opts ...Option) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{
		set:        set,
		classifier: intent.Default(),
		graphs:     viz.NewGraphGenerator(set.People, set.Catalog),
		logger:     logger,
		policy:     urgency.DefaultPolicy(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.engine = search.NewEngine(set.People, set.Catalog, logger).WithClassifier(h.classifier)
	return h
}

func (h *Handlers) refresher() *insights.Refresher {
	return &insights.Refresher{
		People:  h.set.People,
		Inbox:   h.set.Inbox,
		Actions: h.set.Actions,
		Policy:  h.policy,
		Logger:  h.logger,
	}
}

// NewServer registers every tool, resource, and prompt on a new MCP server.
func NewServer(h *Handlers, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "dofo",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_intent",
		Description: "Classify free text as search, add (capture a note), or ask (get advice)",
	}, h.ClassifyIntent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Run a query the way the search box does: search people and notes, capture a note, or return advice",
	}, h.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "format_relative",
		Description: "Format a timestamp as a relative label such as Tomorrow, 3 days overdue, or 2 weeks ago",
	}, h.FormatRelative)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_people",
		Description: "List people with optional relation filter and sort order, plus circle statistics",
	}, h.ListPeople)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_person",
		Description: "Get one person with notes, promises, interactions, actions, and urgency signals",
	}, h.GetPerson)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_interaction",
		Description: "Record a call, message, meeting, or other interaction and update last contact",
	}, h.LogInteraction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_promise",
		Description: "Record a promise made to someone, with a due date",
	}, h.AddPromise)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_promise",
		Description: "Mark a promise as kept",
	}, h.CompletePromise)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "home_feed",
		Description: "Get today's greeting, prioritized pending actions, completed actions, and progress",
	}, h.HomeFeed)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_action",
		Description: "Mark a daily action as done",
	}, h.CompleteAction)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_inbox",
		Description: "List inbox items such as detected birthdays, overdue promises, and relationship insights",
	}, h.ListInbox)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dismiss_inbox_item",
		Description: "Dismiss an inbox item so it no longer shows",
	}, h.DismissInboxItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "act_on_inbox_item",
		Description: "Turn one of an inbox item's suggested actions into a daily action and dismiss the item",
	}, h.ActOnInboxItem)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh_insights",
		Description: "Detect upcoming milestones, overdue contact, and overdue promises and add them to the inbox and feed",
	}, h.RefreshInsights)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "circles_graph",
		Description: "Render circles and their members as a GraphViz DOT graph, optionally centered on one person",
	}, h.CirclesGraph)

	h.registerResources(server)
	h.registerPrompts(server)

	return server
}
