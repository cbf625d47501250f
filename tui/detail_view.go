package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(16)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().Bold(true)
)

func (m *Model) openDetail(id string) {
	ctx := context.Background()
	p, err := m.set.People.Get(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	actions, err := m.set.Actions.ListByPerson(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	m.selected = p
	m.actions = actions
	m.viewMode = ViewDetail
}

func (m Model) renderDetailView() string {
	p := m.selected
	if p == nil {
		return "No person selected"
	}

	var s strings.Builder
	now := m.now()
	st := urgency.Evaluate(p, now, m.opts.Policy)

	s.WriteString(titleStyle.Render(st.Indicator + " " + p.Name))
	s.WriteString("\n\n")

	last, _ := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)
	s.WriteString(m.renderField("Relation", p.Relation))
	s.WriteString(m.renderField("Email", p.Email))
	s.WriteString(m.renderField("Phone", p.Phone))
	s.WriteString(m.renderField("Last Contact", last))
	s.WriteString(m.renderField("Health", fmt.Sprintf("%d (%s)", p.HealthScore, st.HealthBand)))
	if st.Overdue {
		s.WriteString(m.renderField("Overdue", fmt.Sprintf("%d days", st.DaysOverdue)))
	}
	if ms := p.NextMilestone; ms != nil {
		countdown, _ := timefmt.FormatMilestone(&ms.Date, now)
		s.WriteString(m.renderField("Next", fmt.Sprintf("%s (%s)", ms.Description, countdown)))
	}
	if len(p.Tags) > 0 {
		s.WriteString(m.renderField("Tags", strings.Join(p.Tags, ", ")))
	}

	if len(p.Notes) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("NOTES"))
		s.WriteString("\n")
		for _, n := range p.Notes {
			s.WriteString(fmt.Sprintf("  • %s\n", n.Content))
		}
	}

	if open := p.OpenPromises(); len(open) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("PROMISES"))
		s.WriteString("\n")
		for _, pr := range open {
			due, _ := timefmt.FormatRelative(&pr.DueDate, now, timefmt.Future)
			s.WriteString(fmt.Sprintf("  • %s (%s)\n", pr.Description, due))
		}
	}

	if len(p.Interactions) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("INTERACTIONS"))
		s.WriteString("\n")
		for _, in := range p.Interactions {
			when, _ := timefmt.FormatRelative(&in.Date, now, timefmt.Past)
			s.WriteString(fmt.Sprintf("  • %s, %s: %s\n", in.Type, when, in.Description))
		}
	}

	if len(m.actions) > 0 {
		s.WriteString("\n")
		s.WriteString(sectionStyle.Render("ACTIONS"))
		s.WriteString("\n")
		for _, a := range m.actions {
			mark := "○"
			if a.Completed {
				mark = "✓"
			}
			s.WriteString(fmt.Sprintf("  %s %s\n", mark, a.Title))
		}
	}

	s.WriteString("\n")
	if m.message != "" {
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		return ""
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"l: Log interaction",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.selected = nil
		m.message = ""
	case "l":
		m.message = ""
		m.initLogForm()
		m.viewMode = ViewLog
	}

	return m, nil
}
