package search

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/intent"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/store"
)

func newEngine(t *testing.T) (*Engine, store.Set) {
	t.Helper()
	set := fixtures.NewMemorySet()
	return NewEngine(set.People, set.Catalog, zap.NewNop()), set
}

func TestRunEmptyQueryReturnsSuggestions(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "   ", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Empty(t, resp.Intent)
	assert.Empty(t, resp.Results)
	assert.Len(t, resp.Suggestions[intent.Add], 4)
	assert.Contains(t, resp.Suggestions[intent.Ask], "How to apologize for being late?")
}

func TestRunSearchMatchesNamesAndTags(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "Mumbai", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Equal(t, intent.Search, resp.Intent)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, "Ananya Sharma", resp.Results[0].Title)
	assert.Equal(t, "family • Last contact: 6 days ago", resp.Results[0].Description)
	assert.Equal(t, PersonRelevance, resp.Results[0].RelevanceScore)
	assert.Equal(t, "Rahul Mehta", resp.Results[1].Title)
}

func TestRunSearchIncludesNotes(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "doctor", fixtures.ReferenceTime)
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)

	assert.Equal(t, models.ResultPerson, resp.Results[0].Type)
	assert.Equal(t, "1", resp.Results[0].PersonID)

	note := resp.Results[1]
	assert.Equal(t, models.ResultNote, note.Type)
	assert.Equal(t, "Note about Dad (Suresh)", note.Title)
	assert.Equal(t, NoteRelevance, note.RelevanceScore)
	require.NotNil(t, note.Date)
}

func TestRunSearchNoHits(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "zanzibar", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.NotNil(t, resp.Results)
}

func TestRunAskReturnsAdvice(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "Gift ideas for Dad", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Equal(t, intent.Ask, resp.Intent)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "AI Suggestion (85% confident)", resp.Results[0].Title)
	assert.Equal(t, "AI Suggestion (72% confident)", resp.Results[1].Title)
	assert.Equal(t, 0.8, resp.Results[2].RelevanceScore)
}

func TestRunAddCapturesNote(t *testing.T) {
	e, set := newEngine(t)
	ctx := context.Background()

	resp, err := e.Run(ctx, "Remember: Rahul likes hiking", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Equal(t, intent.Add, resp.Intent)
	assert.Equal(t, "remember", resp.Keyword)
	require.NotNil(t, resp.Captured)
	assert.Equal(t, "Rahul likes hiking", resp.Captured.Content)
	assert.Equal(t, []string{"remember"}, resp.Captured.Tags)

	id, err := ulid.Parse(resp.Captured.ID)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixtures.ReferenceTime), id.Time())

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Saved note for Rahul Mehta", resp.Results[0].Title)

	rahul, err := set.People.Get(ctx, "2")
	require.NoError(t, err)
	require.Len(t, rahul.Notes, 2)
	assert.Equal(t, "Rahul likes hiking", rahul.Notes[1].Content)
}

func TestRunAddWithoutPersonIsNotSaved(t *testing.T) {
	e, _ := newEngine(t)

	resp, err := e.Run(context.Background(), "Promise: Call mom this Sunday", fixtures.ReferenceTime)
	require.NoError(t, err)
	assert.Equal(t, intent.Add, resp.Intent)
	assert.Nil(t, resp.Captured)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "No matching person found for: Call mom this Sunday", resp.Results[0].Description)
}

func TestCapturedIDsAreUniqueAndOrdered(t *testing.T) {
	e, _ := newEngine(t)

	a := e.newID(fixtures.ReferenceTime)
	b := e.newID(fixtures.ReferenceTime)
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}

type failingPeople struct{}

func (failingPeople) List(context.Context) ([]models.Person, error) {
	return nil, errors.New("disk on fire")
}

func (failingPeople) AddNote(context.Context, string, *models.Note) error {
	return errors.New("disk on fire")
}

func TestRunPropagatesStoreErrors(t *testing.T) {
	set := fixtures.NewMemorySet()
	e := NewEngine(failingPeople{}, set.Catalog, nil)

	_, err := e.Run(context.Background(), "mumbai", fixtures.ReferenceTime)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestStripLabel(t *testing.T) {
	tests := map[string]string{
		"Remember: Rahul likes hiking":  "Rahul likes hiking",
		"Note: Dad needs BP medication": "Dad needs BP medication",
		"meeting at 10:30 with Vikram":  "meeting at 10:30 with Vikram",
		"no label here":                 "no label here",
		"Todo:":                         "Todo:",
		"  Event:  Ananya graduation  ": "Ananya graduation",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripLabel(in), in)
	}
}

func TestMentionedPerson(t *testing.T) {
	people := fixtures.MustLoad().People

	p := MentionedPerson(people, "remind me about Dad's checkup")
	require.NotNil(t, p)
	assert.Equal(t, "4", p.ID)

	assert.Nil(t, MentionedPerson(people, "Priyanka's wedding"))
	assert.Nil(t, MentionedPerson(nil, "Rahul"))
}
