package web

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harperreed/dofo/charm"
	"github.com/harperreed/dofo/fixtures"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/store"
)

func clock() time.Time { return fixtures.ReferenceTime }

func setup(t *testing.T, onboarded bool) (http.Handler, store.Set, *state.Store) {
	t.Helper()
	set := fixtures.NewMemorySet()
	st := state.New(charm.NewTestClient(t))
	if onboarded {
		require.NoError(t, st.CompleteOnboarding())
	}
	srv, err := NewServer(set, st, zap.NewNop(), WithClock(clock))
	require.NoError(t, err)
	return srv.Handler(), set, st
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(h http.Handler, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRedirectsToOnboarding(t *testing.T) {
	h, _, st := setup(t, false)

	rec := get(h, "/people")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/onboarding", rec.Header().Get("Location"))

	rec = get(h, "/onboarding")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome to DoFo")

	rec = post(h, "/onboarding", url.Values{"name": {"Alex"}, "default_tone": {"warm"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	done, err := st.OnboardingComplete()
	require.NoError(t, err)
	assert.True(t, done)

	rec = get(h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Good afternoon, Alex")
	assert.Contains(t, rec.Body.String(), "5 connections waiting for you")
}

func TestOnboardingRejectsBadTone(t *testing.T) {
	h, _, st := setup(t, false)

	rec := post(h, "/onboarding", url.Values{"name": {"Alex"}, "default_tone": {"sarcastic"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	done, err := st.OnboardingComplete()
	require.NoError(t, err)
	assert.False(t, done)
}

func TestCompleteAction(t *testing.T) {
	h, set, _ := setup(t, true)

	rec := post(h, "/actions/da3/complete", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "✓ Done")

	rec = post(h, "/actions/missing/complete", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	actions, err := set.Actions.ListByPerson(context.Background(), "3")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.True(t, actions[0].Completed)

	rec = get(h, "/")
	assert.Contains(t, rec.Body.String(), "4 connections waiting for you")
}

func TestPeoplePages(t *testing.T) {
	h, _, _ := setup(t, true)

	rec := get(h, "/people")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "5 people · avg health 74 · 1 overdue · 3 milestones this week")
	assert.Contains(t, rec.Body.String(), "Priya Kapoor")

	rec = get(h, "/people?relation=work")
	assert.Contains(t, rec.Body.String(), "Vikram Singh")
	assert.NotContains(t, rec.Body.String(), "Rahul Mehta")

	assert.Equal(t, http.StatusBadRequest, get(h, "/people?relation=enemies").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/people?sort=age").Code)

	rec = get(h, "/people/3")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "priya.k@design.com")
	assert.Contains(t, rec.Body.String(), "Share design portfolio feedback")

	assert.Equal(t, http.StatusNotFound, get(h, "/people/99").Code)
}

func TestPersonPageLogsBadDates(t *testing.T) {
	set := fixtures.NewMemorySet()
	st := state.New(charm.NewTestClient(t))
	require.NoError(t, st.CompleteOnboarding())
	core, logs := observer.New(zap.DebugLevel)
	srv, err := NewServer(set, st, zap.New(core), WithClock(clock))
	require.NoError(t, err)

	p := &models.Person{
		ID:       "undated",
		Name:     "Meera Iyer",
		Relation: models.RelationFriends,
		Promises: []models.Promise{{ID: "pz", Description: "Return the book"}},
	}
	require.NoError(t, set.People.Create(context.Background(), p))

	rec := get(srv.Handler(), "/people/undated")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Return the book")
	assert.Equal(t, 1, logs.FilterMessage("failed to format date").Len())
}

func TestLogInteraction(t *testing.T) {
	h, set, _ := setup(t, true)

	rec := post(h, "/people/5/log", url.Values{"type": {"meeting"}, "description": {"Lunch near the office"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/people/5", rec.Header().Get("Location"))

	p, err := set.People.Get(context.Background(), "5")
	require.NoError(t, err)
	require.NotEmpty(t, p.Interactions)
	assert.Equal(t, "Lunch near the office", p.Interactions[0].Description)

	rec = post(h, "/people/5/log", url.Values{"type": {"meeting"}, "description": {" "}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vikram Singh")
}

func TestPromises(t *testing.T) {
	h, set, _ := setup(t, true)
	ctx := context.Background()

	rec := post(h, "/people/2/promises", url.Values{"description": {"Send the pitch deck"}, "due": {"2024-09-30"}}, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	p, err := set.People.Get(ctx, "2")
	require.NoError(t, err)
	var id string
	for _, pr := range p.Promises {
		if pr.Description == "Send the pitch deck" {
			id = pr.ID
		}
	}
	require.NotEmpty(t, id)

	rec = post(h, "/promises/"+id+"/complete", url.Values{"person_id": {"2"}}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "✓ Kept")

	rec = post(h, "/people/2/promises", url.Values{"description": {"Call"}, "due": {"someday"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInbox(t *testing.T) {
	h, set, _ := setup(t, true)

	rec := get(h, "/inbox")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Long gap with Priya")

	rec = post(h, "/inbox/in2/dismiss", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, get(h, "/inbox").Body.String(), "Long gap with Priya")

	rec = post(h, "/inbox/in3/act", url.Values{"choice": {"2"}}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Send feedback")

	actions, err := set.Actions.ListByPerson(context.Background(), "3")
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	assert.Equal(t, http.StatusConflict, post(h, "/inbox/in3/act", url.Values{"choice": {"2"}}, false).Code)
	actions, err = set.Actions.ListByPerson(context.Background(), "3")
	require.NoError(t, err)
	assert.Len(t, actions, 2)

	assert.Equal(t, http.StatusBadRequest, post(h, "/inbox/in1/act", url.Values{"choice": {"9"}}, false).Code)
	assert.Equal(t, http.StatusNotFound, post(h, "/inbox/in99/dismiss", nil, false).Code)
}

func TestRefreshInsights(t *testing.T) {
	h, set, _ := setup(t, true)

	rec := post(h, "/insights/refresh", nil, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/inbox", rec.Header().Get("Location"))

	actions, err := set.Actions.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, actions, 8)
}

func TestSearch(t *testing.T) {
	h, set, _ := setup(t, true)

	rec := get(h, "/search")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Note: Dad needs BP medication")

	rec = post(h, "/search", url.Values{"q": {"Remember: Rahul likes hiking"}}, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Saved note for Rahul Mehta")

	p, err := set.People.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, "Rahul likes hiking", p.Notes[len(p.Notes)-1].Content)

	rec = post(h, "/search", url.Values{"q": {"mumbai"}}, false)
	assert.Contains(t, rec.Body.String(), "Ananya Sharma")
}

func TestCircles(t *testing.T) {
	h, _, _ := setup(t, true)

	rec := get(h, "/circles")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DOFO CIRCLES")
	assert.Contains(t, rec.Body.String(), "8 nodes, 5 edges")
}

func TestProfile(t *testing.T) {
	h, _, st := setup(t, true)

	rec := get(h, "/profile")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "How often should you check in with your parents?")

	form := url.Values{
		"name":                 {"Sam"},
		"nudge_intensity":      {"low"},
		"quiet_start":          {"21:00"},
		"quiet_end":            {"07:00"},
		"language":             {"hi"},
		"default_tone":         {"formal"},
		"notifications":        {"on"},
		"daily_question_limit": {"2"},
	}
	rec = post(h, "/profile", form, false)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	prefs, err := st.Preferences()
	require.NoError(t, err)
	assert.Equal(t, "Sam", prefs.Name)
	assert.Equal(t, "hi", prefs.Language)
	assert.Equal(t, 2, prefs.DailyQuestionLimit)
	assert.True(t, prefs.EnableNotifications)

	form.Set("quiet_end", "7pm")
	rec = post(h, "/profile", form, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "quiet hours")
}

func TestServeShutsDownCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, err := NewServer(fixtures.NewMemorySet(), nil, zap.NewNop(), WithClock(clock))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get("http://" + ln.Addr().String() + "/people")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)
}
