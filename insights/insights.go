// ABOUTME: Derives inbox items and daily actions from people, cadence, and promises
// ABOUTME: Detection is pure; Refresh persists only what is not already there
package insights

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

// Result is what a detection pass would add.
type Result struct {
	Inbox   []models.InboxItem   `json:"inbox"`
	Actions []models.DailyAction `json:"actions"`
}

type key struct {
	kind     string
	personID string
}

// ledger remembers what already exists per (type, person). An open item always
// blocks a new one; a dismissed or completed one blocks only its own cycle.
type ledger struct {
	open   map[key]bool
	closed map[key][]time.Time
}

func newLedger() *ledger {
	return &ledger{open: map[key]bool{}, closed: map[key][]time.Time{}}
}

func (l *ledger) close(k key, at *time.Time) {
	if at != nil {
		l.closed[k] = append(l.closed[k], *at)
	}
}

// claim reports whether k is free in the cycle matched by same, and takes it.
func (l *ledger) claim(k key, same func(time.Time) bool) bool {
	if l.open[k] {
		return false
	}
	for _, at := range l.closed[k] {
		if same(at) {
			return false
		}
	}
	l.open[k] = true
	return true
}

// Detect derives new inbox items and actions for people as of now.
//
// Undismissed inbox items and pending actions suppress anything of the same
// type for the same person. A dismissed inbox item suppresses only while its
// date falls in the current cycle: after the person last became overdue,
// after the oldest overdue promise was due, or after last year's occurrence of
// the milestone. A completed action suppresses only when its due date matches
// the current one.
func Detect(people []models.Person, existingInbox []models.InboxItem, existingActions []models.DailyAction, now time.Time, policy urgency.Policy) Result {
	inboxSeen := newLedger()
	for _, item := range existingInbox {
		k := key{item.Type, item.PersonID}
		if item.Dismissed {
			d := item.Date
			inboxSeen.close(k, &d)
		} else {
			inboxSeen.open[k] = true
		}
	}
	actionSeen := newLedger()
	for _, a := range existingActions {
		k := key{a.Type, a.PersonID}
		if a.Completed {
			actionSeen.close(k, a.DueDate)
		} else {
			actionSeen.open[k] = true
		}
	}

	res := Result{}
	addInbox := func(item models.InboxItem, cycleStart time.Time) {
		k := key{item.Type, item.PersonID}
		if inboxSeen.claim(k, func(at time.Time) bool { return !at.Before(cycleStart) }) {
			res.Inbox = append(res.Inbox, item)
		}
	}
	addAction := func(a models.DailyAction) {
		k := key{a.Type, a.PersonID}
		if actionSeen.claim(k, func(at time.Time) bool { return a.DueDate != nil && at.Equal(*a.DueDate) }) {
			res.Actions = append(res.Actions, a)
		}
	}

	for i := range people {
		p := &people[i]
		first := p.FirstName()
		st := urgency.Evaluate(p, now, policy)

		if st.MilestoneSoon {
			m := p.NextMilestone
			due := m.Date
			days := timefmt.DaysUntil(m.Date, now)
			if m.Type == models.MilestoneBirthday {
				lastYear := m.Date.AddDate(-1, 0, 1)
				addInbox(models.InboxItem{
					Type:             models.InboxBirthdayDetected,
					Title:            fmt.Sprintf("%s's birthday coming up", first),
					Description:      fmt.Sprintf("%s is in %d days. Time to plan something special?", m.Date.Format("January 2"), days),
					PersonID:         p.ID,
					PersonName:       p.Name,
					Date:             now,
					Actionable:       true,
					SuggestedActions: []string{"Plan birthday celebration", "Send gift", "Create group chat"},
				}, lastYear)
				addAction(models.DailyAction{
					Title:       fmt.Sprintf("Wish %s Happy Birthday", first),
					Description: fmt.Sprintf("Their birthday is in %d days.", days),
					Type:        models.ActionBirthday,
					Priority:    models.PriorityHigh,
					PersonID:    p.ID,
					PersonName:  p.Name,
					DueDate:     &due,
					Tags:        []string{"birthday", p.Relation},
				})
			} else {
				kind := models.ActionMilestone
				if m.Type == models.MilestoneFollowup {
					kind = models.ActionFollowup
				}
				addAction(models.DailyAction{
					Title:       fmt.Sprintf("%s: %s", first, m.Description),
					Description: fmt.Sprintf("Coming up in %d days.", days),
					Type:        kind,
					Priority:    models.PriorityMedium,
					PersonID:    p.ID,
					PersonName:  p.Name,
					DueDate:     &due,
					Tags:        []string{m.Type, p.Relation},
				})
			}
		}

		if st.Overdue {
			dueSince := p.LastContact.AddDate(0, 0, st.CadenceDays)
			addInbox(models.InboxItem{
				Type:             models.InboxRelationshipInsight,
				Title:            fmt.Sprintf("Long gap with %s", first),
				Description:      fmt.Sprintf("You haven't connected with %s in %d days.", first, st.DaysSinceContact),
				PersonID:         p.ID,
				PersonName:       p.Name,
				Date:             now,
				Actionable:       true,
				SuggestedActions: []string{"Send message", "Plan coffee meetup"},
			}, dueSince)
			addAction(models.DailyAction{
				Title:       fmt.Sprintf("Reconnect with %s", first),
				Description: fmt.Sprintf("Last contact was %d days ago.", st.DaysSinceContact),
				Type:        models.ActionCheckin,
				Priority:    priorityFor(st.PriorityScore),
				PersonID:    p.ID,
				PersonName:  p.Name,
				DueDate:     &dueSince,
				Tags:        []string{p.Relation, "overdue"},
			})
		}

		if overdue := overduePromises(p, now); len(overdue) > 0 {
			oldest := overdue[0]
			title := fmt.Sprintf("%s overdue", oldest.Description)
			if len(overdue) > 1 {
				title = fmt.Sprintf("%d promises to %s overdue", len(overdue), first)
			}
			due := oldest.DueDate
			addInbox(models.InboxItem{
				Type:             models.InboxOverduePromise,
				Title:            title,
				Description:      fmt.Sprintf("You promised %s: %s, %d days ago.", first, oldest.Description, timefmt.DaysBetween(oldest.DueDate, now)),
				PersonID:         p.ID,
				PersonName:       p.Name,
				Date:             now,
				Actionable:       true,
				SuggestedActions: []string{"Do it today", "Apologize for delay"},
			}, oldest.DueDate)
			addAction(models.DailyAction{
				Title:       fmt.Sprintf("Keep your promise to %s", first),
				Description: oldest.Description,
				Type:        models.ActionPromise,
				Priority:    oldest.Priority,
				PersonID:    p.ID,
				PersonName:  p.Name,
				DueDate:     &due,
				Tags:        []string{"promise"},
			})
		}
	}

	return res
}

// overduePromises returns open promises due before now, oldest first.
func overduePromises(p *models.Person, now time.Time) []models.Promise {
	var out []models.Promise
	for _, pr := range p.OpenPromises() {
		if pr.DueDate.Before(now) && timefmt.DaysBetween(pr.DueDate, now) >= 1 {
			out = append(out, pr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

func priorityFor(score float64) string {
	switch {
	case score >= 20:
		return models.PriorityHigh
	case score >= 5:
		return models.PriorityMedium
	}
	return models.PriorityLow
}

// PeopleSource lists people.
type PeopleSource interface {
	List(ctx context.Context) ([]models.Person, error)
}

// InboxStore lists and creates inbox items.
type InboxStore interface {
	List(ctx context.Context, includeDismissed bool) ([]models.InboxItem, error)
	Create(ctx context.Context, item *models.InboxItem) error
}

// ActionStore lists and creates daily actions.
type ActionStore interface {
	List(ctx context.Context) ([]models.DailyAction, error)
	Create(ctx context.Context, a *models.DailyAction) error
}

// Refresher runs detection against stores and saves the result.
type Refresher struct {
	People  PeopleSource
	Inbox   InboxStore
	Actions ActionStore
	Policy  urgency.Policy
	Logger  *zap.Logger
}

// Refresh detects and persists new items, returning what was added.
func (r *Refresher) Refresh(ctx context.Context, now time.Time) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	people, err := r.People.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list people: %w", err)
	}
	inbox, err := r.Inbox.List(ctx, true)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list inbox: %w", err)
	}
	actions, err := r.Actions.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list actions: %w", err)
	}

	res := Detect(people, inbox, actions, now, r.Policy)

	for i := range res.Inbox {
		if err := r.Inbox.Create(ctx, &res.Inbox[i]); err != nil {
			return res, fmt.Errorf("failed to create inbox item: %w", err)
		}
	}
	for i := range res.Actions {
		if err := r.Actions.Create(ctx, &res.Actions[i]); err != nil {
			return res, fmt.Errorf("failed to create action: %w", err)
		}
	}

	logger.Info("insights refreshed",
		zap.Int("inbox_added", len(res.Inbox)),
		zap.Int("actions_added", len(res.Actions)))
	return res, nil
}
