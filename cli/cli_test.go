package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/state"
)

func setupEnv(t *testing.T) (*Env, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	env := &Env{
		Set:    fixtures.NewMemorySet(),
		State:  state.New(charm.NewTestClient(t)),
		Logger: zap.NewNop(),
		Out:    &buf,
		Now:    func() time.Time { return fixtures.ReferenceTime },
	}
	return env, &buf
}

func TestHomeCommand(t *testing.T) {
	env, out := setupEnv(t)
	_, err := env.State.Set("name", "Alex")
	require.NoError(t, err)

	require.NoError(t, HomeCommand(env, nil))
	assert.Contains(t, out.String(), "Good afternoon, Alex")
	assert.Contains(t, out.String(), "5 connections waiting for you (0% done)")
	assert.Contains(t, out.String(), "da1")
	assert.NotContains(t, out.String(), "Completed")
}

func TestDoneCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, DoneCommand(env, []string{"da3"}))
	assert.Equal(t, "✓ Done. 4 connections waiting for you (20% done)\n", out.String())

	out.Reset()
	require.NoError(t, HomeCommand(env, []string{"--all"}))
	assert.Contains(t, out.String(), "Completed")

	err := DoneCommand(env, []string{"nope"})
	assert.ErrorContains(t, err, "action nope not found")
	assert.Error(t, DoneCommand(env, nil))
}

func TestPeopleListCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, PeopleListCommand(env, nil))
	assert.Contains(t, out.String(), "5 people · avg health 74 · 1 overdue · 3 milestones this week")
	assert.Contains(t, out.String(), "Priya Kapoor")

	out.Reset()
	require.NoError(t, PeopleListCommand(env, []string{"--relation", "family", "--sort", "name"}))
	assert.Contains(t, out.String(), "Dad (Suresh)")
	assert.NotContains(t, out.String(), "Rahul Mehta")

	assert.Error(t, PeopleListCommand(env, []string{"--relation", "enemies"}))
	assert.Error(t, PeopleListCommand(env, []string{"--sort", "age"}))
}

func TestPeopleShowCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, PeopleShowCommand(env, []string{"priya"}))
	assert.Contains(t, out.String(), "Priya Kapoor")
	assert.Contains(t, out.String(), "priya.k@design.com")
	assert.Contains(t, out.String(), "Share design portfolio feedback")
	assert.Contains(t, out.String(), "Overdue:")

	assert.ErrorContains(t, PeopleShowCommand(env, []string{"ya"}), "matches 2 people: Ananya Sharma, Priya Kapoor")
	assert.Error(t, PeopleShowCommand(env, nil))
}

func TestPeopleLogCommand(t *testing.T) {
	env, out := setupEnv(t)

	err := PeopleLogCommand(env, []string{"--type", "meeting", "--desc", "Coffee near the office", "Vikram"})
	require.NoError(t, err)
	assert.Equal(t, "✓ Logged meeting with Vikram Singh\n", out.String())

	p, err := env.Set.People.Get(context.Background(), "5")
	require.NoError(t, err)
	require.NotEmpty(t, p.Interactions)
	assert.Equal(t, "Coffee near the office", p.Interactions[0].Description)

	assert.Error(t, PeopleLogCommand(env, []string{"--desc", " ", "Vikram"}))
	assert.Error(t, PeopleLogCommand(env, []string{"--desc", "Hi", "--date", "soon", "Vikram"}))
}

func TestPromiseCommands(t *testing.T) {
	env, out := setupEnv(t)
	ctx := context.Background()

	err := PromiseAddCommand(env, []string{"--desc", "Send the pitch deck", "--due", "2024-09-30", "Rahul"})
	require.NoError(t, err)
	assert.Equal(t, "✓ Promised Rahul: Send the pitch deck (due 4 days)\n", out.String())

	p, err := env.Set.People.Get(ctx, "2")
	require.NoError(t, err)
	var id string
	for _, pr := range p.Promises {
		if pr.Description == "Send the pitch deck" {
			id = pr.ID
		}
	}
	require.NotEmpty(t, id)

	out.Reset()
	require.NoError(t, PromiseDoneCommand(env, []string{id}))
	assert.Equal(t, "✓ Promise kept\n", out.String())

	assert.ErrorContains(t, PromiseDoneCommand(env, []string{"nope"}), "promise nope not found")
}

func TestInboxCommands(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, InboxListCommand(env, nil))
	assert.Contains(t, out.String(), "Long gap with Priya")
	assert.Contains(t, out.String(), "2. Plan coffee meetup")

	out.Reset()
	require.NoError(t, InboxDismissCommand(env, []string{"in2"}))
	assert.Equal(t, "✓ Dismissed in2\n", out.String())

	out.Reset()
	require.NoError(t, InboxListCommand(env, nil))
	assert.NotContains(t, out.String(), "Long gap with Priya")

	out.Reset()
	require.NoError(t, InboxListCommand(env, []string{"--all"}))
	assert.Contains(t, out.String(), "(dismissed)")

	assert.ErrorContains(t, InboxDismissCommand(env, []string{"in99"}), "inbox item in99 not found")
}

func TestInboxActCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, InboxActCommand(env, []string{"in3", "2"}))
	assert.Equal(t, "✓ Added to today: Send feedback\n", out.String())

	actions, err := env.Set.Actions.ListByPerson(context.Background(), "3")
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	assert.ErrorContains(t, InboxActCommand(env, []string{"in3", "2"}), "already handled")
	actions, err = env.Set.Actions.ListByPerson(context.Background(), "3")
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	assert.Error(t, InboxActCommand(env, []string{"in1", "x"}))
	assert.Error(t, InboxActCommand(env, []string{"in1", "9"}))
	assert.ErrorContains(t, InboxActCommand(env, []string{"in99"}), "inbox item in99 not found")
}

func TestInsightsRefreshCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, InsightsRefreshCommand(env, []string{"--dry-run"}))
	assert.Contains(t, out.String(), "Would add 0 inbox items and 3 actions")

	out.Reset()
	require.NoError(t, InsightsRefreshCommand(env, nil))
	assert.Contains(t, out.String(), "Added 0 inbox items and 3 actions")

	out.Reset()
	require.NoError(t, InsightsRefreshCommand(env, nil))
	assert.Equal(t, "✓ Nothing new\n", out.String())
}

func TestSearchCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, SearchCommand(env, []string{"priya"}))
	assert.Contains(t, out.String(), "Priya Kapoor")

	out.Reset()
	require.NoError(t, SearchCommand(env, []string{"Remember:", "Rahul", "likes", "hiking"}))
	assert.Equal(t, "✓ Saved note for Rahul Mehta: Rahul likes hiking\n", out.String())

	out.Reset()
	require.NoError(t, SearchCommand(env, []string{"--explain", "how", "do", "I", "apologize"}))
	assert.Contains(t, out.String(), `intent: ask (matched "how")`)

	out.Reset()
	require.NoError(t, SearchCommand(env, nil))
	assert.Contains(t, out.String(), "Try one of these:")
	assert.Contains(t, out.String(), "Note: Dad needs BP medication")
}

func TestClassifyCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, ClassifyCommand(env, []string{"remember", "to", "call", "mom"}))
	assert.Equal(t, "add\n", out.String())

	out.Reset()
	require.NoError(t, ClassifyCommand(env, []string{"--explain", "Mumbai friends"}))
	assert.Equal(t, "intent: search (no keyword matched)\n", out.String())
}

func TestOnboardCommand(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, OnboardCommand(env, []string{"--name", "Alex", "--tone", "warm"}))
	assert.Contains(t, out.String(), "Welcome to DoFo, Alex")

	done, err := env.State.OnboardingComplete()
	require.NoError(t, err)
	assert.True(t, done)
	prefs, err := env.State.Preferences()
	require.NoError(t, err)
	assert.Equal(t, "warm", prefs.DefaultTone)

	require.NoError(t, OnboardCommand(env, []string{"--reset"}))
	done, err = env.State.OnboardingComplete()
	require.NoError(t, err)
	assert.False(t, done)

	assert.Error(t, OnboardCommand(env, []string{"--tone", "sarcastic"}))
}

func TestProfileCommands(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, ProfileSetCommand(env, []string{"name", "Sam"}))
	assert.Equal(t, "✓ name = Sam\n", out.String())

	out.Reset()
	require.NoError(t, ProfileShowCommand(env, nil))
	assert.Contains(t, out.String(), "Sam")
	assert.Contains(t, out.String(), "casual")
	assert.Contains(t, out.String(), "Today's questions:")
	assert.Contains(t, out.String(), "How often should you check in with your parents?")

	assert.Error(t, ProfileSetCommand(env, []string{"name"}))
	assert.Error(t, ProfileSetCommand(env, []string{"colour", "blue"}))
}

func TestVizCommands(t *testing.T) {
	env, out := setupEnv(t)

	require.NoError(t, VizDashboardCommand(env, nil))
	assert.Contains(t, out.String(), "DOFO CIRCLES")
	assert.Contains(t, out.String(), "NEEDS ATTENTION")
	assert.Contains(t, out.String(), "Priya Kapoor")

	out.Reset()
	path := filepath.Join(t.TempDir(), "circles.dot")
	require.NoError(t, VizCirclesCommand(env, []string{"--output", path}))
	assert.Contains(t, out.String(), "(8 nodes, 5 edges)")

	out.Reset()
	require.NoError(t, VizCirclesCommand(env, []string{"--person", "Dad"}))
	assert.Contains(t, out.String(), "digraph")
}

func TestConnectNeedsDatabase(t *testing.T) {
	env, _ := setupEnv(t)

	assert.ErrorIs(t, ConnectGoogleCommand(context.Background(), env, nil), errDemoMode)
	assert.ErrorIs(t, ConnectStatusCommand(context.Background(), env, nil), errDemoMode)
}

func TestConnectStatusCommand(t *testing.T) {
	env, out := setupEnv(t)
	ctx := context.Background()

	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "dofo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	env.Imports = db.NewImportLog(database)

	require.NoError(t, ConnectStatusCommand(ctx, env, nil))
	assert.Contains(t, out.String(), "Not connected")

	require.NoError(t, env.Imports.MarkDone(ctx, "contacts", fixtures.ReferenceTime.AddDate(0, 0, -1)))
	out.Reset()
	require.NoError(t, ConnectStatusCommand(ctx, env, nil))
	assert.Contains(t, out.String(), "contacts")
	assert.Contains(t, out.String(), "idle")
	assert.Contains(t, out.String(), "Yesterday")
}
