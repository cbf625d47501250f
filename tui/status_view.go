// ABOUTME: TUI tab for sync backend and Google import status
// ABOUTME: Shows where state lives and when each import last ran
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/dofo/db"
	"github.com/harperreed/dofo/timefmt"
)

var (
	statusHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Underline(true)

	statusServiceStyle = lipgloss.NewStyle().
				Bold(true).
				Width(12)

	statusIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	statusRunningStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

func (m Model) renderStatusView() string {
	var s strings.Builder

	s.WriteString(statusHeaderStyle.Render("State"))
	s.WriteString("\n\n")
	switch {
	case m.opts.Charm == nil:
		s.WriteString(statusMessageStyle.Render("Demo mode: nothing is saved"))
	case m.opts.Charm.Local():
		s.WriteString("Backend: local (not linked)")
	default:
		s.WriteString(fmt.Sprintf("Backend: charm (%s)", m.opts.Charm.Config().Host))
	}
	s.WriteString("\n\n")

	s.WriteString(statusHeaderStyle.Render("Google Imports"))
	s.WriteString("\n\n")
	if len(m.syncStates) == 0 {
		s.WriteString(statusMessageStyle.Render("No imports yet. Run 'dofo connect google'."))
		s.WriteString("\n")
		return s.String()
	}

	now := m.now()
	for _, st := range m.syncStates {
		var row strings.Builder
		row.WriteString("  ")
		row.WriteString(statusServiceStyle.Render(strings.ToUpper(st.Service[:1]) + st.Service[1:]))

		switch st.Status {
		case db.SyncRunning:
			row.WriteString(statusRunningStyle.Render("  ⟳ Importing..."))
		case db.SyncError:
			row.WriteString(errorStyle.Render("  ✗ Error"))
			if st.ErrorMessage != "" {
				row.WriteString(errorStyle.Render(": " + st.ErrorMessage))
			}
		default:
			last, _ := timefmt.FormatRelative(st.LastSyncTime, now, timefmt.Past)
			row.WriteString(statusIdleStyle.Render("  ✓ " + last))
		}
		s.WriteString(row.String())
		s.WriteString("\n")
	}

	return s.String()
}
