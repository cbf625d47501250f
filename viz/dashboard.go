// ABOUTME: Terminal dashboard of circle health and who needs attention
// ABOUTME: Pure rendering over people and circles; the caller supplies now

package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

type Dashboard struct {
	Summary        people.Summary
	Circles        []CircleStats
	NeedsAttention []Attention
}

type CircleStats struct {
	Name         string
	Members      int
	HealthScore  int
	LastActivity string
}

type Attention struct {
	Name        string
	DaysSince   int
	DaysOverdue int
	Indicator   string
}

// BuildDashboard summarises list and circles as of now.
func BuildDashboard(list []models.Person, circles []models.Circle, now time.Time, policy urgency.Policy) *Dashboard {
	d := &Dashboard{Summary: people.Stats(list, now, policy)}

	for _, c := range circles {
		cs := CircleStats{
			Name:         c.Name,
			Members:      len(c.Members),
			HealthScore:  urgency.ClampHealth(c.HealthScore),
			LastActivity: timefmt.Never,
		}
		if label, err := timefmt.FormatRelative(c.LastGroupActivity, now, timefmt.Past); err == nil {
			cs.LastActivity = label
		}
		d.Circles = append(d.Circles, cs)
	}

	for i := range list {
		st := urgency.Evaluate(&list[i], now, policy)
		if !st.Overdue && st.DaysSinceContact >= 0 {
			continue
		}
		d.NeedsAttention = append(d.NeedsAttention, Attention{
			Name:        list[i].Name,
			DaysSince:   st.DaysSinceContact,
			DaysOverdue: st.DaysOverdue,
			Indicator:   st.Indicator,
		})
	}
	sort.SliceStable(d.NeedsAttention, func(i, j int) bool {
		return d.NeedsAttention[i].DaysOverdue > d.NeedsAttention[j].DaysOverdue
	})

	return d
}

func RenderDashboard(d *Dashboard) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  DOFO CIRCLES\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("CIRCLE HEALTH\n")
	for _, c := range d.Circles {
		out.WriteString(fmt.Sprintf("  %-14s %s %3d  %d members, last together %s\n",
			c.Name, healthBar(c.HealthScore), c.HealthScore, c.Members, strings.ToLower(c.LastActivity)))
	}
	out.WriteString("\n")

	s := d.Summary
	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  👥 %d people  ❤️  %.0f avg health  🎂 %d milestones soon\n\n",
		s.Total, s.AverageHealth, s.UpcomingMilestones))

	if len(d.NeedsAttention) > 0 {
		out.WriteString("NEEDS ATTENTION\n")
		for _, a := range d.NeedsAttention {
			if a.DaysSince < 0 {
				out.WriteString(fmt.Sprintf("  %s %s - never contacted\n", a.Indicator, a.Name))
				continue
			}
			out.WriteString(fmt.Sprintf("  %s %s - %d days since contact (%d overdue)\n",
				a.Indicator, a.Name, a.DaysSince, a.DaysOverdue))
		}
	}

	return out.String()
}

// healthBar draws a 0-100 score as ten blocks.
func healthBar(score int) string {
	n := urgency.ClampHealth(score) / 10
	return strings.Repeat("█", n) + strings.Repeat("░", 10-n)
}
