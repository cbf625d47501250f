// ABOUTME: Interaction logging form for the TUI
// ABOUTME: Three text inputs saved through the people store
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/dofo/models"
	"github.com/harperreed/dofo/people"
)

const (
	fieldType = iota
	fieldDescription
	fieldSentiment
)

func (m *Model) initLogForm() {
	kind := textinput.New()
	kind.Prompt = "Type: "
	kind.Placeholder = "call, message, meeting, email, photo, gift"
	kind.SetValue(models.InteractionCall)

	desc := textinput.New()
	desc.Prompt = "What happened: "
	desc.Placeholder = "Caught up about the trip"
	desc.CharLimit = 280

	sentiment := textinput.New()
	sentiment.Prompt = "Sentiment: "
	sentiment.Placeholder = "positive, neutral, negative (optional)"

	m.formInputs = []textinput.Model{kind, desc, sentiment}
	m.focusIndex = fieldDescription
	m.focusInputs()
}

func (m *Model) focusInputs() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) renderLogView() string {
	var s strings.Builder

	name := ""
	if m.selected != nil {
		name = m.selected.Name
	}
	s.WriteString(titleStyle.Render("LOG INTERACTION WITH " + strings.ToUpper(name)))
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render(strings.Join([]string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}, " • ")))

	return s.String()
}

func (m Model) handleLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewDetail
		m.err = nil
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.focusInputs()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.focusInputs()
		return m, nil
	case "enter":
		if err := m.saveInteraction(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.viewMode = ViewDetail
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) saveInteraction() error {
	if m.selected == nil {
		return nil
	}
	in, err := people.NewInteraction(
		m.formInputs[fieldType].Value(),
		m.formInputs[fieldDescription].Value(),
		m.formInputs[fieldSentiment].Value(),
		m.now(),
	)
	if err != nil {
		return err
	}
	if err := m.set.People.LogInteraction(context.Background(), m.selected.ID, in); err != nil {
		return err
	}

	id := m.selected.ID
	m.reload()
	m.openDetail(id)
	m.message = "✓ Logged " + in.Type
	return nil
}
