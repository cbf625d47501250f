// ABOUTME: Relationship urgency predicates over last contact, cadence, and milestones
// ABOUTME: All functions take "now" explicitly and never touch the wall clock
package urgency

import (
	"time"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/timefmt"
)

// DefaultWindowDays is how far ahead a milestone counts as "soon".
const DefaultWindowDays = 7

// Policy tunes Evaluate. Zero fields fall back to DefaultWindowDays and
// models.DefaultCadenceDays.
type Policy struct {
	// WindowDays is how far ahead a milestone counts as soon.
	WindowDays int
	// CadenceDays applies to people with no frequency of their own.
	CadenceDays int
}

// DefaultPolicy is a weekly milestone window and a monthly default cadence.
func DefaultPolicy() Policy {
	return Policy{WindowDays: DefaultWindowDays, CadenceDays: models.DefaultCadenceDays}
}

// NewPolicy builds a Policy from a window and a default cadence frequency name.
// Unknown frequencies keep the monthly default.
func NewPolicy(windowDays int, defaultFrequency string) Policy {
	return Policy{WindowDays: windowDays, CadenceDays: models.FrequencyDays(defaultFrequency)}
}

// Window is the milestone window in days.
func (p Policy) Window() int {
	if p.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return p.WindowDays
}

// Cadence is the fallback cadence in days.
func (p Policy) Cadence() int {
	if p.CadenceDays <= 0 {
		return models.DefaultCadenceDays
	}
	return p.CadenceDays
}

// IsOverdue reports whether more than cadenceDays have passed since lastContact.
// A missing lastContact is unknown, not overdue.
func IsOverdue(lastContact *time.Time, cadenceDays int, now time.Time) bool {
	if lastContact == nil {
		return false
	}
	return now.Sub(*lastContact) > time.Duration(cadenceDays)*timefmt.Day
}

// IsMilestoneSoon reports whether milestone falls within [now, now+windowDays].
// Past milestones are never soon; see IsMilestonePast.
func IsMilestoneSoon(milestone *time.Time, now time.Time, windowDays int) bool {
	if milestone == nil {
		return false
	}
	diff := milestone.Sub(now)
	return diff >= 0 && diff <= time.Duration(windowDays)*timefmt.Day
}

// IsMilestonePast reports whether milestone is strictly before now.
func IsMilestonePast(milestone *time.Time, now time.Time) bool {
	return milestone != nil && milestone.Before(now)
}

// CadenceDays maps a cadence frequency to days. Unknown frequencies get the default.
func CadenceDays(frequency string) int {
	if days := models.FrequencyDays(frequency); days > 0 {
		return days
	}
	return models.DefaultCadenceDays
}

// DaysSince is the whole days elapsed since last, or -1 when last is unknown.
func DaysSince(last *time.Time, now time.Time) int {
	if last == nil {
		return -1
	}
	return timefmt.DaysBetween(*last, now)
}

// DaysOverdue is how many whole days past cadence the contact is; 0 when on time
// or unknown. Once IsOverdue holds it is at least 1, so a partial first day counts.
func DaysOverdue(last *time.Time, cadenceDays int, now time.Time) int {
	if !IsOverdue(last, cadenceDays, now) {
		return 0
	}
	return max(DaysSince(last, now)-cadenceDays, 1)
}

// Health bands.
const (
	BandGood = "good"
	BandFair = "fair"
	BandPoor = "poor"
)

// ClampHealth pins a health score to 0..100.
func ClampHealth(score int) int {
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	}
	return score
}

// HealthBand buckets a health score: 80+ good, 60+ fair, else poor.
func HealthBand(score int) string {
	score = ClampHealth(score)
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandFair
	}
	return BandPoor
}

// RelationMultiplier weights overdue days by how close the relationship is.
func RelationMultiplier(relation string) float64 {
	switch relation {
	case models.RelationFamily, models.RelationClose:
		return 2.0
	case models.RelationFriends:
		return 1.5
	}
	return 1.0
}

// PriorityScore ranks who to reach out to first: days overdue x 2 x relation weight.
func PriorityScore(last *time.Time, cadenceDays int, relation string, now time.Time) float64 {
	overdue := DaysOverdue(last, cadenceDays, now)
	if overdue <= 0 {
		return 0
	}
	return float64(overdue*2) * RelationMultiplier(relation)
}

// Indicator is a traffic light for a contact: red more than a week past cadence,
// yellow within three days of it, green otherwise or when never contacted.
func Indicator(daysSince, cadenceDays int) string {
	switch {
	case daysSince < 0:
		return "⚪"
	case daysSince > cadenceDays+7:
		return "🔴"
	case daysSince >= cadenceDays-3:
		return "🟡"
	}
	return "🟢"
}

// Status bundles every urgency signal for one person.
type Status struct {
	PersonID         string  `json:"person_id"`
	Overdue          bool    `json:"overdue"`
	MilestoneSoon    bool    `json:"milestone_soon"`
	MilestonePast    bool    `json:"milestone_past"`
	CadenceDays      int     `json:"cadence_days"`
	DaysSinceContact int     `json:"days_since_contact"`
	DaysOverdue      int     `json:"days_overdue"`
	HealthBand       string  `json:"health_band"`
	PriorityScore    float64 `json:"priority_score"`
	Indicator        string  `json:"indicator"`
}

// Evaluate computes Status for p as of now.
func Evaluate(p *models.Person, now time.Time, policy Policy) Status {
	cadence := p.CadenceDaysOr(policy.Cadence())

	var milestone *time.Time
	if p.NextMilestone != nil {
		d := p.NextMilestone.Date
		milestone = &d
	}

	since := DaysSince(p.LastContact, now)
	return Status{
		PersonID:         p.ID,
		Overdue:          IsOverdue(p.LastContact, cadence, now),
		MilestoneSoon:    IsMilestoneSoon(milestone, now, policy.Window()),
		MilestonePast:    IsMilestonePast(milestone, now),
		CadenceDays:      cadence,
		DaysSinceContact: since,
		DaysOverdue:      DaysOverdue(p.LastContact, cadence, now),
		HealthBand:       HealthBand(p.HealthScore),
		PriorityScore:    PriorityScore(p.LastContact, cadence, p.Relation, now),
		Indicator:        Indicator(since, cadence),
	}
}
