// Package confirm is a yes/no dialog for destructive browser actions.
package confirm

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmedMsg is sent when the user confirms. Tag identifies the action
// the dialog was opened for.
type ConfirmedMsg struct{ Tag string }

// CancelledMsg is sent when the user cancels.
type CancelledMsg struct{ Tag string }

// maxDetails caps the item list shown under the prompt.
const maxDetails = 8

// Model is a confirmation dialog.
type Model struct {
	Active  bool
	Tag     string
	Prompt  string
	Details []string
	Border  lipgloss.TerminalColor
	keys    keyMap
}

// New creates an inactive dialog.
func New() Model {
	return Model{
		keys:   defaultKeyMap,
		Border: lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FFAF5F"},
	}
}

// Activate shows the dialog for the action tag with a prompt and an
// optional list of affected items.
func (m *Model) Activate(tag, prompt string, details ...string) {
	m.Tag = tag
	m.Prompt = prompt
	m.Details = details
	m.Active = true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.Active {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		tag := m.Tag
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.Active = false
			return m, func() tea.Msg { return ConfirmedMsg{Tag: tag} }
		case key.Matches(msg, m.keys.Cancel):
			m.Active = false
			return m, func() tea.Msg { return CancelledMsg{Tag: tag} }
		}
	}

	return m, nil
}

func (m Model) View() string {
	if !m.Active {
		return ""
	}

	body := m.Prompt
	if len(m.Details) > 0 {
		shown := m.Details
		more := 0
		if len(shown) > maxDetails {
			shown, more = shown[:maxDetails], len(shown)-maxDetails
		}
		var b strings.Builder
		for _, d := range shown {
			b.WriteString("\n  • " + d)
		}
		if more > 0 {
			b.WriteString("\n  … and " + strconv.Itoa(more) + " more")
		}
		body += "\n" + b.String()
	}

	dialogBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.Border).
		Padding(1, 2).
		Render(body)

	helpText := lipgloss.NewStyle().
		Faint(true).
		Width(lipgloss.Width(dialogBox)).
		Align(lipgloss.Center).
		Render("(y/n)")

	return lipgloss.JoinVertical(lipgloss.Left, dialogBox, helpText)
}

type keyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var defaultKeyMap = keyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}
