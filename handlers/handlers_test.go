// ABOUTME: Tests for DoFo MCP tool handlers
// ABOUTME: Calls handlers directly against the in-memory store with a fixed clock
package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
	"github.com/harperreed/dofo/urgency"
)

func setup(t *testing.T, opts ...Option) (*Handlers, store.Set) {
	t.Helper()
	set := fixtures.NewMemorySet()
	opts = append([]Option{WithClock(func() time.Time { return fixtures.ReferenceTime })}, opts...)
	return New(set, zap.NewNop(), opts...), set
}

func TestClassifyIntent(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.ClassifyIntent(ctx, nil, ClassifyIntentInput{Text: "Remember: Rahul likes hiking"})
	require.NoError(t, err)
	assert.Equal(t, ClassifyIntentOutput{Intent: "add", Keyword: "remember"}, out)

	_, out, err = h.ClassifyIntent(ctx, nil, ClassifyIntentInput{Text: "How to apologize for being late?"})
	require.NoError(t, err)
	assert.Equal(t, "ask", out.Intent)

	_, out, err = h.ClassifyIntent(ctx, nil, ClassifyIntentInput{Text: "Mumbai friends"})
	require.NoError(t, err)
	assert.Equal(t, ClassifyIntentOutput{Intent: "search"}, out)
}

func TestSearchCapturesNote(t *testing.T) {
	h, set := setup(t)
	ctx := context.Background()

	_, out, err := h.Search(ctx, nil, SearchInput{Query: "Remember: Rahul likes hiking"})
	require.NoError(t, err)
	assert.Equal(t, "add", out.Intent)
	require.NotNil(t, out.Captured)
	assert.Equal(t, "2", out.Captured.PersonID)
	assert.Equal(t, "Rahul likes hiking", out.Captured.Content)
	assert.Equal(t, []string{"remember"}, out.Captured.Tags)
	assert.Equal(t, "2024-09-26T12:00:00Z", out.Captured.Date)

	rahul, err := set.People.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Rahul likes hiking", rahul.Notes[len(rahul.Notes)-1].Content)
}

func TestSearchEmptyQuerySuggests(t *testing.T) {
	h, _ := setup(t)

	_, out, err := h.Search(context.Background(), nil, SearchInput{Query: ""})
	require.NoError(t, err)
	assert.Empty(t, out.Results)
	assert.NotNil(t, out.Results)
	assert.Len(t, out.Suggestions["ask"], 4)
}

func TestFormatRelative(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		in   FormatRelativeInput
		want string
	}{
		{FormatRelativeInput{Target: "2024-09-27T12:00:00Z", Direction: "future"}, "Tomorrow"},
		{FormatRelativeInput{Target: "2024-09-20", Reference: "2024-09-26", Direction: "past"}, "6 days ago"},
		{FormatRelativeInput{Target: "2024-09-23T12:00:00Z", Direction: "future"}, "3 days overdue"},
		{FormatRelativeInput{Direction: "past"}, "Never"},
	}
	for _, tt := range tests {
		_, out, err := h.FormatRelative(ctx, nil, tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, out.Label, tt.in)
	}

	_, _, err := h.FormatRelative(ctx, nil, FormatRelativeInput{Target: "soon", Direction: "future"})
	assert.Error(t, err)
	_, _, err = h.FormatRelative(ctx, nil, FormatRelativeInput{Target: "2024-09-27", Direction: "sideways"})
	assert.Error(t, err)
}

func TestListPeople(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.ListPeople(ctx, nil, ListPeopleInput{Relation: "family", Sort: "name"})
	require.NoError(t, err)
	require.Len(t, out.People, 2)
	assert.Equal(t, "Ananya Sharma", out.People[0].Name)
	assert.Equal(t, "6 days ago", out.People[0].LastContactLabel)
	require.NotNil(t, out.People[0].NextMilestone)
	assert.Equal(t, "In 2 weeks", out.People[0].NextMilestone.Countdown)

	// Summary always covers everyone.
	assert.Equal(t, 5, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Overdue)

	_, _, err = h.ListPeople(ctx, nil, ListPeopleInput{Relation: "enemies"})
	assert.Error(t, err)
	_, _, err = h.ListPeople(ctx, nil, ListPeopleInput{Sort: "age"})
	assert.Error(t, err)
}

func TestGetPerson(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.GetPerson(ctx, nil, GetPersonInput{Name: "priya"})
	require.NoError(t, err)
	assert.Equal(t, "3", out.Person.ID)
	assert.True(t, out.Person.Overdue)
	assert.True(t, out.Urgency.Overdue)
	assert.Equal(t, 32, out.Urgency.DaysSinceContact)
	assert.NotEmpty(t, out.Notes)
	assert.NotEmpty(t, out.Promises)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, "da3", out.Actions[0].ID)

	_, _, err = h.GetPerson(ctx, nil, GetPersonInput{ID: "99"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = h.GetPerson(ctx, nil, GetPersonInput{})
	assert.ErrorContains(t, err, "required")
	_, _, err = h.GetPerson(ctx, nil, GetPersonInput{Name: "zzz"})
	assert.ErrorContains(t, err, "no person")
}

func TestGetPersonAmbiguousName(t *testing.T) {
	h, _ := setup(t)

	// "ya" is in Ananya Sharma and Priya Kapoor.
	_, _, err := h.GetPerson(context.Background(), nil, GetPersonInput{Name: "ya"})
	assert.ErrorContains(t, err, `"ya" matches 2 people: Ananya Sharma, Priya Kapoor`)
}

func TestLogInteraction(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.LogInteraction(ctx, nil, LogInteractionInput{
		PersonID:    "3",
		Type:        "call",
		Description: "Talked about her Europe trip",
		Sentiment:   "positive",
	})
	require.NoError(t, err)
	assert.Len(t, out.Interaction.ID, 26)
	assert.Equal(t, "Today", out.Interaction.DateLabel)
	assert.Equal(t, "Today", out.Person.LastContactLabel)
	assert.False(t, out.Person.Overdue)

	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: "3", Type: "telepathy", Description: "x"})
	assert.Error(t, err)
	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: "99", Type: "call", Description: "x"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = h.LogInteraction(ctx, nil, LogInteractionInput{PersonID: "3", Type: "call", Description: "x", Date: "last week"})
	assert.ErrorContains(t, err, "invalid date")
}

func TestLogInteractionInThePastKeepsLastContact(t *testing.T) {
	h, _ := setup(t)

	_, out, err := h.LogInteraction(context.Background(), nil, LogInteractionInput{
		PersonID:    "5",
		Type:        "email",
		Description: "Old thread",
		Date:        "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "Yesterday", out.Person.LastContactLabel)
}

func TestHomeFeedAndCompleteAction(t *testing.T) {
	c := charm.NewTestClient(t)
	st := state.New(c)
	_, err := st.Set("name", "Alex")
	require.NoError(t, err)

	h, _ := setup(t, WithState(st))
	ctx := context.Background()

	_, out, err := h.HomeFeed(ctx, nil, HomeFeedInput{})
	require.NoError(t, err)
	assert.Equal(t, "Good afternoon", out.Greeting)
	assert.Equal(t, "Alex", out.Name)
	assert.Equal(t, "5 connections waiting for you", out.Headline)
	assert.Equal(t, 5, out.PendingCount)
	assert.Equal(t, "da1", out.Pending[0].ID)
	assert.Equal(t, "19 days", out.Pending[0].DueLabel)
	assert.Empty(t, out.Completed)
	assert.NotNil(t, out.Completed)

	_, done, err := h.CompleteAction(ctx, nil, IDInput{ID: "da1"})
	require.NoError(t, err)
	assert.Equal(t, CompleteActionOutput{ID: "da1", Completed: true, Progress: 20}, done)

	_, _, err = h.CompleteAction(ctx, nil, IDInput{ID: "nope"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = h.CompleteAction(ctx, nil, IDInput{})
	assert.ErrorContains(t, err, "required")
}

func TestInbox(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.ListInbox(ctx, nil, ListInboxInput{})
	require.NoError(t, err)
	require.Len(t, out.Items, 4)

	labels := map[string]string{}
	for _, it := range out.Items {
		labels[it.ID] = it.DateLabel
	}
	assert.Equal(t, "Today", labels["in1"])
	assert.Equal(t, "Yesterday", labels["in2"])
	assert.Equal(t, "Sep 10, 2024", labels["in4"])

	_, dismissed, err := h.DismissInboxItem(ctx, nil, IDInput{ID: "in4"})
	require.NoError(t, err)
	assert.True(t, dismissed.Dismissed)

	_, out, err = h.ListInbox(ctx, nil, ListInboxInput{})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)

	_, out, err = h.ListInbox(ctx, nil, ListInboxInput{IncludeDismissed: true})
	require.NoError(t, err)
	assert.Len(t, out.Items, 4)

	_, _, err = h.DismissInboxItem(ctx, nil, IDInput{ID: "nope"})
	assert.ErrorContains(t, err, "not found")
}

func TestActOnInboxItem(t *testing.T) {
	h, set := setup(t)
	ctx := context.Background()

	_, out, err := h.ActOnInboxItem(ctx, nil, ActOnInboxItemInput{ID: "in2", Action: 2})
	require.NoError(t, err)
	assert.Equal(t, "Plan coffee meetup", out.Title)
	assert.Equal(t, "checkin", out.Type)
	assert.Equal(t, "3", out.PersonID)

	open, err := set.Inbox.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, open, 3)

	_, out, err = h.ActOnInboxItem(ctx, nil, ActOnInboxItemInput{ID: "in1"})
	require.NoError(t, err)
	assert.Equal(t, "Plan birthday celebration", out.Title)

	_, _, err = h.ActOnInboxItem(ctx, nil, ActOnInboxItemInput{ID: "in1"})
	assert.ErrorContains(t, err, "already handled")
	_, _, err = h.ActOnInboxItem(ctx, nil, ActOnInboxItemInput{ID: "in3", Action: 9})
	assert.Error(t, err)
	_, _, err = h.ActOnInboxItem(ctx, nil, ActOnInboxItemInput{ID: "nope"})
	assert.ErrorContains(t, err, "not found")
}

func TestPromises(t *testing.T) {
	h, set := setup(t)
	ctx := context.Background()

	_, out, err := h.AddPromise(ctx, nil, AddPromiseInput{
		PersonID:    "2",
		Description: "Intro him to an investor",
		DueDate:     "2024-09-30",
		Priority:    "high",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "4 days", out.DueLabel)
	assert.Equal(t, "high", out.Priority)

	_, done, err := h.CompletePromise(ctx, nil, IDInput{ID: out.ID})
	require.NoError(t, err)
	assert.True(t, done.Completed)

	rahul, err := set.People.Get(ctx, "2")
	require.NoError(t, err)
	assert.Empty(t, rahul.OpenPromises())

	_, _, err = h.AddPromise(ctx, nil, AddPromiseInput{PersonID: "99", Description: "x", DueDate: "2024-09-30"})
	assert.ErrorContains(t, err, "not found")
	_, _, err = h.AddPromise(ctx, nil, AddPromiseInput{PersonID: "2", Description: "x", DueDate: "someday"})
	assert.ErrorContains(t, err, "invalid due date")
	_, _, err = h.CompletePromise(ctx, nil, IDInput{ID: "nope"})
	assert.ErrorContains(t, err, "not found")
}

func TestRefreshInsights(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.RefreshInsights(ctx, nil, RefreshInsightsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Inbox)
	assert.Len(t, out.Actions, 3)

	_, out, err = h.RefreshInsights(ctx, nil, RefreshInsightsInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Actions)
}

func TestCirclesGraph(t *testing.T) {
	h, _ := setup(t)
	ctx := context.Background()

	_, out, err := h.CirclesGraph(ctx, nil, CirclesGraphInput{})
	require.NoError(t, err)
	assert.Equal(t, 8, out.NodeCount)
	assert.Equal(t, 5, out.EdgeCount)
	assert.True(t, strings.Contains(out.DOTSource, "digraph"))

	_, _, err = h.CirclesGraph(ctx, nil, CirclesGraphInput{PersonID: "99"})
	assert.Error(t, err)
}

func TestOutputsNeverNullLists(t *testing.T) {
	p := models.Person{ID: "x", Name: "Bare"}
	out := personToOutput(&p, fixtures.ReferenceTime, urgency.DefaultPolicy())
	assert.NotNil(t, out.Circles)
	assert.NotNil(t, out.Tags)
	assert.Equal(t, "Never", out.LastContactLabel)
	assert.Empty(t, out.LastContact)
	assert.Nil(t, out.NextMilestone)
}
