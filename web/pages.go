package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/feed"
	"github.com/harperreed/dofo/insights"
	"github.com/harperreed/dofo/intent"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/search"
	"github.com/harperreed/dofo/state"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
	"github.com/harperreed/dofo/viz"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	name := ""
	if s.state != nil {
		if prefs, err := s.state.Preferences(); err == nil {
			name = prefs.Name
		}
	}

	f, err := feed.Build(r.Context(), s.set.Actions, name, s.now())
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]interface{}{
		"Feed":            f,
		"Title":           "Home",
		"ContentTemplate": "home-content",
	})
}

func (s *Server) handleCompleteAction(w http.ResponseWriter, r *http.Request) {
	if err := s.set.Actions.Complete(r.Context(), r.PathValue("id")); err != nil {
		s.storeError(w, err, "action")
		return
	}
	respond(w, r, "/", `<span class="text-green-600">✓ Done</span>`)
}

// PersonRow is one line of the people table.
type PersonRow struct {
	ID          string
	Name        string
	Relation    string
	Indicator   string
	LastContact string
	HealthScore int
	Next        string
}

func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	relation := r.URL.Query().Get("relation")
	if relation != "" && relation != people.FilterAll && !slices.Contains(models.Relations, relation) {
		http.Error(w, fmt.Sprintf("unknown relation %q", relation), http.StatusBadRequest)
		return
	}
	order, err := people.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	all, err := s.set.People.List(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}

	now := s.now()
	list := people.Filter(all, relation)
	people.Sort(list, order)

	rows := make([]PersonRow, 0, len(list))
	for i := range list {
		p := &list[i]
		st := urgency.Evaluate(p, now, s.policy)
		last := s.dateLabel(timefmt.FormatRelative(p.LastContact, now, timefmt.Past))
		row := PersonRow{
			ID:          p.ID,
			Name:        p.Name,
			Relation:    p.Relation,
			Indicator:   st.Indicator,
			LastContact: last,
			HealthScore: p.HealthScore,
		}
		if m := p.NextMilestone; m != nil {
			countdown := s.dateLabel(timefmt.FormatMilestone(&m.Date, now))
			row.Next = fmt.Sprintf("%s (%s)", m.Description, countdown)
		}
		rows = append(rows, row)
	}

	s.render(w, http.StatusOK, map[string]interface{}{
		"People":          rows,
		"Stats":           people.Stats(all, now, s.policy),
		"Relations":       append([]string{people.FilterAll}, models.Relations...),
		"Relation":        relation,
		"Title":           "People",
		"ContentTemplate": "people-content",
	})
}

// dateLabel returns label, logging err. A bad date renders blank rather than failing the page.
func (s *Server) dateLabel(label string, err error) string {
	if err != nil {
		s.logger.Debug("failed to format date", zap.Error(err))
	}
	return label
}

// labelled pairs a record with its rendered relative date.
type labelled[T any] struct {
	Item  T
	Label string
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	s.renderPerson(w, r, http.StatusOK, "")
}

func (s *Server) renderPerson(w http.ResponseWriter, r *http.Request, status int, formErr string) {
	ctx := r.Context()
	p, err := s.set.People.Get(ctx, r.PathValue("id"))
	if err != nil {
		s.storeError(w, err, "person")
		return
	}
	actions, err := s.set.Actions.ListByPerson(ctx, p.ID)
	if err != nil {
		s.serverError(w, err)
		return
	}

	now := s.now()
	st := urgency.Evaluate(p, now, s.policy)
	last := s.dateLabel(timefmt.FormatRelative(p.LastContact, now, timefmt.Past))

	var promises []labelled[models.Promise]
	for _, pr := range p.OpenPromises() {
		due := s.dateLabel(timefmt.FormatRelative(&pr.DueDate, now, timefmt.Future))
		promises = append(promises, labelled[models.Promise]{pr, due})
	}
	var interactions []labelled[models.Interaction]
	for _, in := range p.Interactions {
		when := s.dateLabel(timefmt.FormatRelative(&in.Date, now, timefmt.Past))
		interactions = append(interactions, labelled[models.Interaction]{in, when})
	}
	next := ""
	if m := p.NextMilestone; m != nil {
		countdown := s.dateLabel(timefmt.FormatMilestone(&m.Date, now))
		next = fmt.Sprintf("%s, %s (%s)", m.Description, m.Date.Format("Jan 2"), countdown)
	}

	s.render(w, status, map[string]interface{}{
		"Person":           p,
		"Status":           st,
		"LastContact":      last,
		"Next":             next,
		"Promises":         promises,
		"Interactions":     interactions,
		"Actions":          actions,
		"InteractionTypes": models.InteractionTypes,
		"Error":            formErr,
		"Title":            p.Name,
		"ContentTemplate":  "person-content",
	})
}

func (s *Server) handleLogInteraction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, err := people.NewInteraction(r.FormValue("type"), r.FormValue("description"), r.FormValue("sentiment"), s.now())
	if err != nil {
		s.renderPerson(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.set.People.LogInteraction(r.Context(), id, in); err != nil {
		s.storeError(w, err, "person")
		return
	}
	http.Redirect(w, r, "/people/"+id, http.StatusSeeOther)
}

func (s *Server) handleAddPromise(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	due := s.now().Add(7 * 24 * time.Hour)
	if v := r.FormValue("due"); v != "" {
		t, err := timefmt.ParseTimestamp(v)
		if err != nil {
			s.renderPerson(w, r, http.StatusBadRequest, "invalid due date: "+err.Error())
			return
		}
		due = t
	}
	pr, err := people.NewPromise(r.FormValue("description"), due, r.FormValue("priority"))
	if err != nil {
		s.renderPerson(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.set.People.AddPromise(r.Context(), id, pr); err != nil {
		s.storeError(w, err, "person")
		return
	}
	http.Redirect(w, r, "/people/"+id, http.StatusSeeOther)
}

func (s *Server) handleCompletePromise(w http.ResponseWriter, r *http.Request) {
	if err := s.set.People.CompletePromise(r.Context(), r.PathValue("id"), s.now()); err != nil {
		s.storeError(w, err, "promise")
		return
	}
	back := "/people"
	if pid := r.FormValue("person_id"); pid != "" {
		back = "/people/" + pid
	}
	respond(w, r, back, `<span class="text-green-600">✓ Kept</span>`)
}

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	items, err := s.set.Inbox.List(r.Context(), false)
	if err != nil {
		s.serverError(w, err)
		return
	}

	now := s.now()
	rows := make([]labelled[models.InboxItem], 0, len(items))
	for _, item := range items {
		when := s.dateLabel(timefmt.FormatEventDate(item.Date, now))
		rows = append(rows, labelled[models.InboxItem]{item, when})
	}

	s.render(w, http.StatusOK, map[string]interface{}{
		"Items":           rows,
		"Title":           "Inbox",
		"ContentTemplate": "inbox-content",
	})
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if err := s.set.Inbox.Dismiss(r.Context(), r.PathValue("id")); err != nil {
		s.storeError(w, err, "inbox item")
		return
	}
	respond(w, r, "/inbox", `<span class="text-gray-500">Dismissed</span>`)
}

func (s *Server) handleAct(w http.ResponseWriter, r *http.Request) {
	choice := 1
	if v := r.FormValue("choice"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid choice", http.StatusBadRequest)
			return
		}
		choice = n
	}

	a, err := insights.Act(r.Context(), s.set.Inbox, s.set.Actions, r.PathValue("id"), choice-1)
	if errors.Is(err, insights.ErrNotActionable) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, insights.ErrDismissed) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		s.storeError(w, err, "inbox item")
		return
	}
	respond(w, r, "/", `<span class="text-green-600">✓ Added to today: `+template.HTMLEscapeString(a.Title)+`</span>`)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresher := &insights.Refresher{
		People:  s.set.People,
		Inbox:   s.set.Inbox,
		Actions: s.set.Actions,
		Policy:  s.policy,
		Logger:  s.logger,
	}
	if _, err := refresher.Refresh(r.Context(), s.now()); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/inbox", http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	// GET shows suggestions; POST runs the query.
	query := ""
	if r.Method == http.MethodPost {
		query = r.FormValue("q")
	}

	resp, err := s.engine.Run(r.Context(), query, s.now())
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]interface{}{
		"Response":        resp,
		"Query":           query,
		"Intents":         []intent.Intent{intent.Search, intent.Add, intent.Ask},
		"Suggestions":     search.Suggestions,
		"Title":           "Search",
		"ContentTemplate": "search-content",
	})
}

func (s *Server) handleCircles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := s.set.People.List(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}
	circles, err := s.set.Catalog.ListCircles(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}
	dot, stats, err := s.generator.GenerateCirclesGraph(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}

	s.render(w, http.StatusOK, map[string]interface{}{
		"Dashboard":       viz.RenderDashboard(viz.BuildDashboard(list, circles, s.now(), s.policy)),
		"DOT":             dot,
		"GraphStats":      stats,
		"Title":           "Circles",
		"ContentTemplate": "circles-content",
	})
}

func (s *Server) profileData(ctx context.Context, prefs models.UserPreferences, formErr string) (map[string]interface{}, error) {
	questions, err := s.set.Catalog.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	questions = questions[:min(max(prefs.DailyQuestionLimit, 0), len(questions))]

	return map[string]interface{}{
		"Prefs":           prefs,
		"Questions":       questions,
		"Tones":           state.Tones,
		"Languages":       state.Languages,
		"Nudges":          state.NudgeIntensities,
		"Error":           formErr,
		"Title":           "Profile",
		"ContentTemplate": "profile-content",
	}, nil
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, "profile is not available in demo mode", http.StatusNotFound)
		return
	}
	prefs, err := s.state.Preferences()
	if err != nil {
		s.serverError(w, err)
		return
	}
	data, err := s.profileData(r.Context(), prefs, "")
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Error(w, "profile is not available in demo mode", http.StatusNotFound)
		return
	}
	prefs, err := s.state.Preferences()
	if err != nil {
		s.serverError(w, err)
		return
	}

	prefs.Name = r.FormValue("name")
	prefs.NudgeIntensity = r.FormValue("nudge_intensity")
	prefs.QuietHours.Start = r.FormValue("quiet_start")
	prefs.QuietHours.End = r.FormValue("quiet_end")
	prefs.Language = r.FormValue("language")
	prefs.DefaultTone = r.FormValue("default_tone")
	prefs.EnableNotifications = r.FormValue("notifications") == "on"
	if n, err := strconv.Atoi(r.FormValue("daily_question_limit")); err == nil {
		prefs.DailyQuestionLimit = n
	} else {
		prefs.DailyQuestionLimit = -1
	}

	if err := s.state.SavePreferences(prefs); err != nil {
		data, derr := s.profileData(r.Context(), prefs, err.Error())
		if derr != nil {
			s.serverError(w, derr)
			return
		}
		s.render(w, http.StatusBadRequest, data)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	prefs := models.DefaultPreferences()
	if s.state != nil {
		if saved, err := s.state.Preferences(); err == nil {
			prefs = saved
		}
	}
	s.render(w, http.StatusOK, map[string]interface{}{
		"Prefs":           prefs,
		"Tones":           state.Tones,
		"Languages":       state.Languages,
		"Title":           "Welcome",
		"ContentTemplate": "onboarding-content",
	})
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if s.state == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	prefs, err := s.state.Preferences()
	if err != nil {
		s.serverError(w, err)
		return
	}
	prefs.Name = r.FormValue("name")
	if v := r.FormValue("default_tone"); v != "" {
		prefs.DefaultTone = v
	}
	if v := r.FormValue("language"); v != "" {
		prefs.Language = v
	}

	if err := s.state.SavePreferences(prefs); err != nil {
		s.render(w, http.StatusBadRequest, map[string]interface{}{
			"Prefs":           prefs,
			"Tones":           state.Tones,
			"Languages":       state.Languages,
			"Error":           err.Error(),
			"Title":           "Welcome",
			"ContentTemplate": "onboarding-content",
		})
		return
	}
	if err := s.state.CompleteOnboarding(); err != nil {
		s.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
