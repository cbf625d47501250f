package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dofo/insights"
	"github.com/harperreed/dofo/timefmt"
	"github.com/harperreed/dofo/urgency"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("DOFO"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	switch m.tab {
	case TabHome:
		if m.feed != nil {
			greeting := m.feed.Greeting
			if m.feed.Name != "" {
				greeting += ", " + m.feed.Name
			}
			s.WriteString(fmt.Sprintf("%s\n%s (%d%% done)\n\n", greeting, m.feed.Headline(), m.feed.Progress))
		}
		s.WriteString(m.renderTable())
	case TabStatus:
		s.WriteString(m.renderStatusView())
	default:
		s.WriteString(m.renderTable())
	}
	s.WriteString("\n")

	if m.message != "" {
		s.WriteString(messageStyle.Render(m.message))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	var (
		columns []table.Column
		rows    []table.Row
	)
	now := m.now()

	switch m.tab {
	case TabHome:
		columns = []table.Column{
			{Title: "Priority", Width: 8},
			{Title: "Action", Width: 36},
			{Title: "Person", Width: 18},
			{Title: "Due", Width: 14},
		}
		if m.feed != nil {
			for _, it := range m.feed.Pending {
				rows = append(rows, table.Row{it.Priority, it.Title, it.PersonName, it.DueLabel})
			}
		}
	case TabPeople:
		columns = []table.Column{
			{Title: "Name", Width: 24},
			{Title: "Relation", Width: 10},
			{Title: "Last Contact", Width: 14},
			{Title: "Health", Width: 6},
		}
		for i := range m.people {
			p := &m.people[i]
			st := urgency.Evaluate(p, now, m.opts.Policy)
			last, _ := timefmt.FormatRelative(p.LastContact, now, timefmt.Past)
			rows = append(rows, table.Row{st.Indicator + " " + p.Name, p.Relation, last, fmt.Sprintf("%d", p.HealthScore)})
		}
	case TabInbox:
		columns = []table.Column{
			{Title: "Title", Width: 36},
			{Title: "Person", Width: 18},
			{Title: "When", Width: 12},
		}
		for _, item := range m.inbox {
			when, _ := timefmt.FormatEventDate(item.Date, now)
			rows = append(rows, table.Row{item.Title, item.PersonName, when})
		}
	}

	if len(rows) == 0 {
		return "Nothing here yet.\n"
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabHome:
		if m.feed != nil {
			return len(m.feed.Pending)
		}
	case TabPeople:
		return len(m.people)
	case TabInbox:
		return len(m.inbox)
	}
	return 0
}

func (m Model) renderListHelp() string {
	help := []string{"↑/↓: Navigate", "Tab: Switch tabs"}
	switch m.tab {
	case TabHome:
		help = append(help, "Enter: Done")
	case TabPeople:
		help = append(help, "Enter: View details", "c: Circles")
	case TabInbox:
		help = append(help, "Enter: Act", "d: Dismiss")
	}
	help = append(help, "r: Refresh insights", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "enter":
		return m.handleListEnter()
	case "d":
		if m.tab == TabInbox && m.selectedRow < len(m.inbox) {
			item := m.inbox[m.selectedRow]
			m.pending = confirmation{kind: confirmDismiss, id: item.ID, label: item.Title}
			m.viewMode = ViewConfirm
		}
	case "c":
		if m.tab == TabPeople {
			m.openCircles()
		}
	case "r":
		r := &insights.Refresher{
			People:  m.set.People,
			Inbox:   m.set.Inbox,
			Actions: m.set.Actions,
			Policy:  m.opts.Policy,
			Logger:  m.opts.Logger,
		}
		res, err := r.Refresh(context.Background(), m.now())
		if err != nil {
			m.err = err
			return m, nil
		}
		m.reload()
		m.message = fmt.Sprintf("Found %d inbox items and %d actions", len(res.Inbox), len(res.Actions))
	}

	return m, nil
}

func (m Model) handleListEnter() (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabHome:
		if m.feed != nil && m.selectedRow < len(m.feed.Pending) {
			it := m.feed.Pending[m.selectedRow]
			m.pending = confirmation{kind: confirmComplete, id: it.ID, label: it.Title}
			m.viewMode = ViewConfirm
		}
	case TabPeople:
		if m.selectedRow < len(m.people) {
			m.openDetail(m.people[m.selectedRow].ID)
		}
	case TabInbox:
		if m.selectedRow < len(m.inbox) {
			item := m.inbox[m.selectedRow]
			label := item.Title
			if len(item.SuggestedActions) > 0 {
				label = item.SuggestedActions[0]
			}
			m.pending = confirmation{kind: confirmAct, id: item.ID, label: label}
			m.viewMode = ViewConfirm
		}
	}
	return m, nil
}
