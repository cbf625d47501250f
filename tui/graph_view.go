package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dofo/viz"
)

func (m *Model) openCircles() {
	circles, err := m.set.Catalog.ListCircles(context.Background())
	if err != nil {
		m.err = err
		return
	}
	d := viz.BuildDashboard(m.people, circles, m.now(), m.opts.Policy)
	m.dashboard = viz.RenderDashboard(d)
	m.viewMode = ViewCircles
}

func (m Model) renderCirclesView() string {
	var s strings.Builder

	s.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Render(m.dashboard))

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(strings.Join([]string{"Esc: Back", "q: Quit"}, " • ")))

	return s.String()
}

func (m Model) handleCirclesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.dashboard = ""
	}

	return m, nil
}
