package people

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/urgency"
)

func names(list []models.Person) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Name
	}
	return out
}

func TestFilter(t *testing.T) {
	all := fixtures.MustLoad().People

	family := Filter(all, models.RelationFamily)
	assert.Equal(t, []string{"Ananya Sharma", "Dad (Suresh)"}, names(family))

	assert.Len(t, Filter(all, FilterAll), 5)
	assert.Len(t, Filter(all, ""), 5)
	assert.Empty(t, Filter(all, models.RelationOther))
}

func TestSortByName(t *testing.T) {
	list := fixtures.MustLoad().People
	Sort(list, SortName)
	assert.Equal(t, []string{"Ananya Sharma", "Dad (Suresh)", "Priya Kapoor", "Rahul Mehta", "Vikram Singh"}, names(list))
}

func TestSortByLastContactPutsNeverLast(t *testing.T) {
	list := fixtures.MustLoad().People
	list = append(list, models.Person{ID: "6", Name: "New Contact"})

	Sort(list, SortLastContact)
	assert.Equal(t, []string{
		"Vikram Singh", "Dad (Suresh)", "Ananya Sharma", "Rahul Mehta", "Priya Kapoor", "New Contact",
	}, names(list))
}

func TestSortByHealthDefault(t *testing.T) {
	list := fixtures.MustLoad().People
	Sort(list, "bogus")
	assert.Equal(t, []string{"Dad (Suresh)", "Ananya Sharma", "Vikram Singh", "Rahul Mehta", "Priya Kapoor"}, names(list))
}

func TestParseSort(t *testing.T) {
	for in, want := range map[string]string{
		"":             SortHealth,
		"healthScore":  SortHealth,
		"name":         SortName,
		"last-contact": SortLastContact,
	} {
		got, err := ParseSort(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSort("age")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	list := fixtures.MustLoad().People

	s := Stats(list, fixtures.ReferenceTime, urgency.DefaultPolicy())
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.ByRelation[models.RelationFamily])
	assert.Equal(t, 1, s.ByRelation[models.RelationWork])
	assert.Equal(t, 0, s.ByRelation[models.RelationOther])
	assert.InDelta(t, 74.0, s.AverageHealth, 0.001)

	// Priya: 32 days on a monthly cadence.
	assert.Equal(t, 1, s.Overdue)
	// Rahul Sep 28, Dad Sep 29, Vikram Sep 30; Ananya's Oct 15 is outside the week.
	assert.Equal(t, 3, s.UpcomingMilestones)
}

func TestStatsIgnoresPastMilestones(t *testing.T) {
	list := fixtures.MustLoad().People
	later := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	s := Stats(list, later, urgency.DefaultPolicy())
	assert.Equal(t, 1, s.UpcomingMilestones)
}

func TestStatsEmpty(t *testing.T) {
	s := Stats(nil, fixtures.ReferenceTime, urgency.DefaultPolicy())
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0.0, s.AverageHealth)
}

func TestNewInteraction(t *testing.T) {
	at := time.Date(2024, 9, 26, 18, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	in, err := NewInteraction(" Call ", "  Caught up about the trip ", "Positive", at)
	require.NoError(t, err)
	assert.Len(t, in.ID, 26)
	assert.Equal(t, models.InteractionCall, in.Type)
	assert.Equal(t, "Caught up about the trip", in.Description)
	assert.Equal(t, models.SentimentPositive, in.Sentiment)
	assert.Equal(t, time.UTC, in.Date.Location())
	assert.True(t, in.Date.Equal(at))

	in, err = NewInteraction("gift", "Sent flowers", "", at)
	require.NoError(t, err)
	assert.Empty(t, in.Sentiment)
}

func TestNewInteractionRejects(t *testing.T) {
	at := fixtures.ReferenceTime
	for _, tc := range []struct{ kind, desc, sentiment string }{
		{"carrier pigeon", "Sent a note", ""},
		{"call", "   ", ""},
		{"call", "Talked", "ecstatic"},
	} {
		_, err := NewInteraction(tc.kind, tc.desc, tc.sentiment, at)
		assert.Error(t, err, tc.kind)
	}

	_, err := NewInteraction("call", "Talked", "", time.Time{})
	assert.Error(t, err)
}

func TestNewPromise(t *testing.T) {
	due := time.Date(2024, 10, 1, 9, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))

	pr, err := NewPromise("  Send the photos ", due, "")
	require.NoError(t, err)
	assert.Len(t, pr.ID, 36)
	assert.Equal(t, "Send the photos", pr.Description)
	assert.Equal(t, models.PriorityMedium, pr.Priority)
	assert.Equal(t, time.UTC, pr.DueDate.Location())
	assert.False(t, pr.Completed)

	pr, err = NewPromise("Call", due, "HIGH")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, pr.Priority)

	_, err = NewPromise(" ", due, "")
	assert.Error(t, err)
	_, err = NewPromise("Call", time.Time{}, "")
	assert.Error(t, err)
	_, err = NewPromise("Call", due, "urgent")
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	set := fixtures.NewMemorySet()

	p, err := Lookup(ctx, set.People, "4", "")
	require.NoError(t, err)
	assert.Equal(t, "Dad (Suresh)", p.Name)

	p, err = Lookup(ctx, set.People, "", "VIKRAM")
	require.NoError(t, err)
	assert.Equal(t, "5", p.ID)

	_, err = Lookup(ctx, set.People, "42", "")
	assert.ErrorContains(t, err, "person 42 not found")
	_, err = Lookup(ctx, set.People, "", " ")
	assert.ErrorContains(t, err, "required")
	_, err = Lookup(ctx, set.People, "", "nobody")
	assert.ErrorContains(t, err, "no person matches")
	_, err = Lookup(ctx, set.People, "", "YA")
	assert.ErrorContains(t, err, `"YA" matches 2 people: Ananya Sharma, Priya Kapoor`)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	set := fixtures.NewMemorySet()

	p, err := Resolve(ctx, set.People, "3")
	require.NoError(t, err)
	assert.Equal(t, "Priya Kapoor", p.Name)

	p, err = Resolve(ctx, set.People, "priya")
	require.NoError(t, err)
	assert.Equal(t, "3", p.ID)
	assert.NotEmpty(t, p.Notes)

	_, err = Resolve(ctx, set.People, "")
	assert.Error(t, err)
}
