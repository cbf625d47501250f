package connect

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/people/v1"

	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/store"
)

func setupTestDB(t *testing.T) (*sql.DB, store.Set) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "dofo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = db.Seed(context.Background(), database, fixtures.MustLoad())
	require.NoError(t, err)
	return database, db.NewSet(database)
}

func clock() time.Time { return fixtures.ReferenceTime }

type fakeContacts struct {
	pages map[string]*people.ListConnectionsResponse
	err   error
}

func (f *fakeContacts) ListContacts(ctx context.Context, pageToken string) (*people.ListConnectionsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[pageToken], nil
}

func contact(resource, name string, emails ...string) *people.Person {
	p := &people.Person{ResourceName: resource}
	if name != "" {
		p.Names = []*people.Name{{DisplayName: name}}
	}
	for _, e := range emails {
		p.EmailAddresses = append(p.EmailAddresses, &people.EmailAddress{Value: e})
	}
	return p
}

func contactPages() *fakeContacts {
	priya := contact("people/c1", "Priya Kapoor", "PRIYA.K@design.com")
	priya.Birthdays = []*people.Birthday{{Date: &people.Date{Month: 3, Day: 2}}}

	meera := contact("people/c2", "Meera Iyer", "old@example.com")
	meera.EmailAddresses = append(meera.EmailAddresses, &people.EmailAddress{
		Value:    "meera@example.com",
		Metadata: &people.FieldMetadata{Primary: true},
	})
	meera.PhoneNumbers = []*people.PhoneNumber{{Value: "+91 90000 11111"}}
	meera.Biographies = []*people.Biography{{Value: "Met at design week"}}
	meera.Birthdays = []*people.Birthday{{Date: &people.Date{Year: 1992, Month: 10, Day: 1}}}

	return &fakeContacts{pages: map[string]*people.ListConnectionsResponse{
		"": {
			Connections: []*people.Person{
				priya,
				meera,
				contact("people/c3", "No Email"),
			},
			NextPageToken: "p2",
		},
		"p2": {
			Connections: []*people.Person{
				contact("people/c4", "Meera I.", "meera@example.com"),
			},
		},
	}}
}

func TestImportContacts(t *testing.T) {
	ctx := context.Background()
	database, set := setupTestDB(t)
	log := db.NewImportLog(database)

	ci := &ContactsImporter{People: set.People, Log: log, Cadence: models.FrequencyQuarterly, Now: clock}
	stats, err := ci.Import(ctx, contactPages())
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Fetched: 4, Created: 1, Matched: 2, Skipped: 1}, stats)

	all, err := set.People.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	found, err := set.People.FindByName(ctx, "Meera")
	require.NoError(t, err)
	require.Len(t, found, 1)
	meera, err := set.People.Get(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "meera@example.com", meera.Email)
	assert.Equal(t, "+91 90000 11111", meera.Phone)
	assert.Equal(t, models.RelationOther, meera.Relation)
	assert.Equal(t, ImportedHealthScore, meera.HealthScore)
	require.NotNil(t, meera.Cadence)
	assert.Equal(t, models.FrequencyQuarterly, meera.Cadence.Frequency)
	require.NotNil(t, meera.NextMilestone)
	assert.True(t, meera.NextMilestone.Date.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)))
	require.Len(t, meera.Notes, 1)
	assert.Equal(t, "Met at design week", meera.Notes[0].Content)

	priya, err := set.People.Get(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, priya.NextMilestone)
	assert.True(t, priya.NextMilestone.Date.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)))

	st, err := log.State(ctx, ContactsService)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, db.SyncIdle, st.Status)
	require.NotNil(t, st.LastSyncTime)
}

func TestImportContactsIsIncremental(t *testing.T) {
	ctx := context.Background()
	database, set := setupTestDB(t)
	log := db.NewImportLog(database)

	_, err := (&ContactsImporter{People: set.People, Log: log, Now: clock}).Import(ctx, contactPages())
	require.NoError(t, err)

	stats, err := (&ContactsImporter{People: set.People, Log: log, Now: clock}).Import(ctx, contactPages())
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Fetched: 4, Skipped: 4}, stats)

	all, err := set.People.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestImportContactsRecordsFailure(t *testing.T) {
	ctx := context.Background()
	database, set := setupTestDB(t)
	log := db.NewImportLog(database)

	ci := &ContactsImporter{People: set.People, Log: log, Now: clock}
	_, err := ci.Import(ctx, &fakeContacts{err: errors.New("quota exceeded")})
	require.ErrorContains(t, err, "quota exceeded")

	st, err := log.State(ctx, ContactsService)
	require.NoError(t, err)
	assert.Equal(t, db.SyncError, st.Status)
	assert.Contains(t, st.ErrorMessage, "quota exceeded")
}

func TestImportContactDefaultsCadence(t *testing.T) {
	set := fixtures.NewMemorySet()
	database, _ := setupTestDB(t)

	ci := &ContactsImporter{People: set.People, Log: db.NewImportLog(database), Now: clock}
	created, err := ci.ImportContact(context.Background(), &GoogleContact{
		ResourceName: "people/x",
		Name:         "Kabir Das",
		Email:        "kabir@example.com",
	})
	require.NoError(t, err)
	assert.True(t, created)

	found, err := set.People.FindByName(context.Background(), "Kabir")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, models.FrequencyMonthly, found[0].Cadence.Frequency)
	assert.Nil(t, found[0].NextMilestone)
	assert.Equal(t, 30, found[0].CadenceDays())
}

func TestNextOccurrence(t *testing.T) {
	now := fixtures.ReferenceTime
	assert.Equal(t, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), NextOccurrence(time.October, 1, now))
	assert.Equal(t, time.Date(2024, 9, 26, 0, 0, 0, 0, time.UTC), NextOccurrence(time.September, 26, now))
	assert.Equal(t, time.Date(2025, 9, 25, 0, 0, 0, 0, time.UTC), NextOccurrence(time.September, 25, now))
}

func TestPersonMatcher(t *testing.T) {
	list := []models.Person{
		{ID: "1", Name: "Alice", Email: "alice@example.com"},
		{ID: "2", Name: "Bob"},
	}
	m := NewPersonMatcher(list)

	p, ok := m.FindMatch("  Alice@Example.COM ")
	require.True(t, ok)
	assert.Equal(t, "1", p.ID)

	_, ok = m.FindMatch("")
	assert.False(t, ok)
	_, ok = m.FindMatch("carol@example.com")
	assert.False(t, ok)

	m.Add(&models.Person{ID: "3", Email: "carol@example.com"})
	p, ok = m.FindMatch("carol@example.com")
	require.True(t, ok)
	assert.Equal(t, "3", p.ID)
}

type fakeEvents struct {
	items []*calendar.Event
	min   time.Time
	max   time.Time
}

func (f *fakeEvents) ListEvents(ctx context.Context, min, max time.Time, pageToken string) (*calendar.Events, error) {
	f.min, f.max = min, max
	return &calendar.Events{Items: f.items}, nil
}

func allDay(id, summary, date string) *calendar.Event {
	return &calendar.Event{Id: id, Summary: summary, Start: &calendar.EventDateTime{Date: date}}
}

func TestImportBirthdays(t *testing.T) {
	ctx := context.Background()
	database, set := setupTestDB(t)

	cancelled := allDay("e6", "Vikram's birthday", "2024-12-01")
	cancelled.Status = "cancelled"
	pager := &fakeEvents{items: []*calendar.Event{
		allDay("e1", "Ananya's birthday", "2024-10-12"),
		{Id: "e2", Summary: "Rahul's Birthday", Start: &calendar.EventDateTime{DateTime: "2024-11-05T10:00:00+05:30"}},
		allDay("e3", "Priya birthday", "2025-03-02"),
		allDay("e4", "Team offsite", "2024-10-03"),
		allDay("e5", "Zoe's birthday", "2024-10-20"),
		cancelled,
	}}

	bi := &BirthdayImporter{People: set.People, Log: db.NewImportLog(database), Now: clock}
	stats, err := bi.Import(ctx, pager)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.Fetched)
	assert.Equal(t, 2, stats.Updated)
	assert.Equal(t, map[string]int{
		"later than current milestone": 1,
		"not a birthday":               1,
		"no matching person":           1,
		"cancelled":                    1,
	}, stats.Skipped)
	assert.True(t, pager.min.Equal(fixtures.ReferenceTime))
	assert.True(t, pager.max.Equal(fixtures.ReferenceTime.Add(BirthdayWindow)))

	ananya, err := set.People.Get(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ananya.NextMilestone.Date.Equal(time.Date(2024, 10, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.MilestoneBirthday, ananya.NextMilestone.Type)

	rahul, err := set.People.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, models.MilestoneFollowup, rahul.NextMilestone.Type)

	priya, err := set.People.Get(ctx, "3")
	require.NoError(t, err)
	require.NotNil(t, priya.NextMilestone)
}

func TestBirthdayDate(t *testing.T) {
	d, reason := birthdayDate(&calendar.Event{Summary: "Mom birthday", Start: &calendar.EventDateTime{DateTime: "2024-11-05T23:30:00-08:00"}})
	assert.Empty(t, reason)
	assert.Equal(t, time.Date(2024, 11, 6, 0, 0, 0, 0, time.UTC), d)

	_, reason = birthdayDate(&calendar.Event{Summary: "birthday"})
	assert.Equal(t, "missing start", reason)
	_, reason = birthdayDate(nil)
	assert.Equal(t, "empty", reason)
}

func TestOAuthConfig(t *testing.T) {
	_, err := NewOAuthConfig("", "secret")
	assert.ErrorIs(t, err, ErrNotConfigured)

	cfg, err := NewOAuthConfig("id", "secret")
	require.NoError(t, err)
	assert.Equal(t, Scopes, cfg.Scopes)
	assert.Equal(t, "http://localhost:8085/oauth/callback", cfg.RedirectURL)
}

func TestTokenRoundTrip(t *testing.T) {
	path := TokenPath(filepath.Join(t.TempDir(), "creds"))
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Round(time.Second),
	}
	require.NoError(t, SaveToken(path, token))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.True(t, loaded.Expiry.Equal(token.Expiry))

	cfg, err := NewOAuthConfig("id", "secret")
	require.NoError(t, err)
	client, err := HTTPClient(context.Background(), cfg, path)
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
