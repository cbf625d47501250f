// ABOUTME: Confirmation dialog for TUI
// ABOUTME: Completes actions, dismisses inbox items, or turns them into actions
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dofo/insights"
)

type confirmKind int

const (
	confirmComplete confirmKind = iota
	confirmDismiss
	confirmAct
)

type confirmation struct {
	kind  confirmKind
	id    string
	label string
}

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("170")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("170")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmView() string {
	var question, button string
	switch m.pending.kind {
	case confirmComplete:
		question, button = "Mark this done?", "Done (y)"
	case confirmDismiss:
		question, button = "Dismiss this inbox item?", "Dismiss (y)"
	case confirmAct:
		question, button = "Add this to today?", "Add (y)"
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render(button),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		question,
		"",
		m.pending.label,
		"",
		buttons,
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, confirmBoxStyle.Render(content))
}

func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.applyConfirmation(); err != nil {
			m.err = err
		}
		m.viewMode = ViewList
		m.pending = confirmation{}
	case "n", "N", "esc":
		m.viewMode = ViewList
		m.pending = confirmation{}
	}
	return m, nil
}

func (m *Model) applyConfirmation() error {
	ctx := context.Background()
	switch m.pending.kind {
	case confirmComplete:
		if err := m.set.Actions.Complete(ctx, m.pending.id); err != nil {
			return fmt.Errorf("failed to complete action: %w", err)
		}
		m.message = "✓ Done"
	case confirmDismiss:
		if err := m.set.Inbox.Dismiss(ctx, m.pending.id); err != nil {
			return fmt.Errorf("failed to dismiss inbox item: %w", err)
		}
		m.message = "✓ Dismissed"
	case confirmAct:
		a, err := insights.Act(ctx, m.set.Inbox, m.set.Actions, m.pending.id, 0)
		if err != nil {
			return err
		}
		m.message = "✓ Added to today: " + a.Title
	}

	m.reload()
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
	return nil
}
