// ABOUTME: Tool output types and conversions from models
// ABOUTME: Dates are RFC3339 strings and labels are computed against the handler clock

package handlers

import (
	"time"

	"github.com/harperreed/dofo/feed"
	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

type MilestoneOutput struct {
	Type        string `json:"type"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Countdown   string `json:"countdown"`
}

type PersonOutput struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Relation         string           `json:"relation"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Circles          []string         `json:"circles"`
	Tags             []string         `json:"tags"`
	LastContact      string           `json:"last_contact,omitempty"`
	LastContactLabel string           `json:"last_contact_label"`
	HealthScore      int              `json:"health_score"`
	HealthBand       string           `json:"health_band"`
	CadenceDays      int              `json:"cadence_days"`
	Overdue          bool             `json:"overdue"`
	Indicator        string           `json:"indicator"`
	NextMilestone    *MilestoneOutput `json:"next_milestone,omitempty"`
}

type NoteOutput struct {
	ID       string   `json:"id"`
	PersonID string   `json:"person_id"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	Tags     []string `json:"tags"`
}

type PromiseOutput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	DueLabel    string `json:"due_label"`
	Priority    string `json:"priority"`
	Completed   bool   `json:"completed"`
}

type InteractionOutput struct {
	ID          string `json:"id"`
	PersonID    string `json:"person_id"`
	Type        string `json:"type"`
	Date        string `json:"date"`
	DateLabel   string `json:"date_label"`
	Description string `json:"description"`
	Sentiment   string `json:"sentiment,omitempty"`
}

type ActionOutput struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	PersonID    string   `json:"person_id"`
	PersonName  string   `json:"person_name"`
	DueDate     string   `json:"due_date,omitempty"`
	DueLabel    string   `json:"due_label,omitempty"`
	Overdue     bool     `json:"overdue"`
	Completed   bool     `json:"completed"`
	AIDraft     string   `json:"ai_draft,omitempty"`
	Tags        []string `json:"tags"`
}

type InboxItemOutput struct {
	ID               string   `json:"id"`
	Type             string   `json:"type"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	PersonID         string   `json:"person_id,omitempty"`
	PersonName       string   `json:"person_name,omitempty"`
	Date             string   `json:"date"`
	DateLabel        string   `json:"date_label"`
	Actionable       bool     `json:"actionable"`
	SuggestedActions []string `json:"suggested_actions"`
	Dismissed        bool     `json:"dismissed"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// nonNil keeps empty lists as [] in JSON.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func personToOutput(p *models.Person, now time.Time, policy urgency.Policy) PersonOutput {
	st := urgency.Evaluate(p, now, policy)
	last, _ := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)

	out := PersonOutput{
		ID:               p.ID,
		Name:             p.Name,
		Relation:         p.Relation,
		Email:            p.Email,
		Phone:            p.Phone,
		Circles:          nonNil(p.Circles),
		Tags:             nonNil(p.Tags),
		LastContact:      formatTimePtr(p.LastContact),
		LastContactLabel: last,
		HealthScore:      p.HealthScore,
		HealthBand:       st.HealthBand,
		CadenceDays:      st.CadenceDays,
		Overdue:          st.Overdue,
		Indicator:        st.Indicator,
	}
	if m := p.NextMilestone; m != nil {
		countdown, _ := timefmt.FormatMilestone(&m.Date, now)
		out.NextMilestone = &MilestoneOutput{
			Type:        m.Type,
			Date:        formatTime(m.Date),
			Description: m.Description,
			Countdown:   countdown,
		}
	}
	return out
}

func noteToOutput(n *models.Note) NoteOutput {
	return NoteOutput{
		ID:       n.ID,
		PersonID: n.PersonID,
		Content:  n.Content,
		Date:     formatTime(n.Date),
		Tags:     nonNil(n.Tags),
	}
}

func promiseToOutput(pr *models.Promise, now time.Time) PromiseOutput {
	due, _ := timefmt.FormatRelative(&pr.DueDate, now, timefmt.Future)
	return PromiseOutput{
		ID:          pr.ID,
		Description: pr.Description,
		DueDate:     formatTime(pr.DueDate),
		DueLabel:    due,
		Priority:    pr.Priority,
		Completed:   pr.Completed,
	}
}

func interactionToOutput(in *models.Interaction, now time.Time) InteractionOutput {
	label, _ := timefmt.FormatRelative(&in.Date, now, timefmt.Past)
	return InteractionOutput{
		ID:          in.ID,
		PersonID:    in.PersonID,
		Type:        in.Type,
		Date:        formatTime(in.Date),
		DateLabel:   label,
		Description: in.Description,
		Sentiment:   in.Sentiment,
	}
}

func actionToOutput(a *models.DailyAction, now time.Time) ActionOutput {
	out := ActionOutput{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Type:        a.Type,
		Priority:    a.Priority,
		PersonID:    a.PersonID,
		PersonName:  a.PersonName,
		DueDate:     formatTimePtr(a.DueDate),
		Completed:   a.Completed,
		AIDraft:     a.AIDraft,
		Tags:        nonNil(a.Tags),
	}
	if a.DueDate != nil {
		out.DueLabel, _ = timefmt.FormatRelative(a.DueDate, now, timefmt.Future)
		out.Overdue = !a.Completed && timefmt.DaysUntil(*a.DueDate, now) < 0
	}
	return out
}

func feedItemToOutput(it *feed.Item) ActionOutput {
	return ActionOutput{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Type:        it.Type,
		Priority:    it.Priority,
		PersonID:    it.PersonID,
		PersonName:  it.PersonName,
		DueDate:     formatTimePtr(it.DueDate),
		DueLabel:    it.DueLabel,
		Overdue:     it.Overdue,
		Completed:   it.Completed,
		AIDraft:     it.AIDraft,
		Tags:        nonNil(it.Tags),
	}
}

func inboxToOutput(item *models.InboxItem, now time.Time) InboxItemOutput {
	label, _ := timefmt.FormatEventDate(item.Date, now)
	return InboxItemOutput{
		ID:               item.ID,
		Type:             item.Type,
		Title:            item.Title,
		Description:      item.Description,
		PersonID:         item.PersonID,
		PersonName:       item.PersonName,
		Date:             formatTime(item.Date),
		DateLabel:        label,
		Actionable:       item.Actionable,
		SuggestedActions: nonNil(item.SuggestedActions),
		Dismissed:        item.Dismissed,
	}
}
