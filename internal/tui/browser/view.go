package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattsolo1/grove-axisregions/pkg/regions"
)

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + m.help.View(m.keys)
	}

	header := headerStyle.Render("Axis Regions") + "  " + mutedStyle.Render(shortenPath(m.session.Path))
	if m.session.Dirty() {
		header += " " + statusStyle.Render("[modified]")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderTreeView(), "  ", m.renderPlotPanel())
	if m.confirm.Active {
		body = m.confirm.View()
	}

	var status string
	switch {
	case m.isRenaming:
		status = "Rename: " + m.renameInput.View()
		if m.statusIsError {
			status += "  " + errorStyle.Render(m.statusMessage)
		}
	case m.statusIsError:
		status = errorStyle.Render(m.statusMessage)
	default:
		status = statusStyle.Render(m.statusMessage)
	}

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		status,
		m.help.View(m.keys),
	)

	// Add top margin to prevent border cutoff
	return "\n" + fullView
}

func (m Model) renderTreeView() string {
	if len(m.rows) == 0 {
		return mutedStyle.Render("Empty document. Press N to add a group.")
	}

	var b strings.Builder
	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := min(start+viewportHeight, len(m.rows))

	for i := start; i < end; i++ {
		n := m.rows[i]
		b.WriteString(m.renderRow(i, n))
		b.WriteString("\n")
	}

	if len(m.rows) > viewportHeight {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.rows))))
	}
	return b.String()
}

func (m Model) renderRow(i int, n *regions.Node) string {
	cursor := "  "
	if i == m.cursor {
		cursor = cursorStyle.Render("▶ ")
	}

	check := "[ ]"
	if m.session.Selection.IsSelected(n) {
		check = "[x]"
	}

	indent := ""
	if p := n.Parent(); p != nil && !p.IsRoot() {
		indent = "  "
	}

	var label string
	if n.IsGroup() {
		label = groupStyle.Render(n.Label()) + mutedStyle.Render(fmt.Sprintf(" (%d)", n.Len()))
	} else {
		r := n.Region()
		label = n.Label()
		if r.TextValue() != "" {
			label += mutedStyle.Render(fmt.Sprintf("  %s-%s", regions.FormatBound(r.Lower()), regions.FormatBound(r.Upper())))
		}
		if !r.IsMovable() {
			label += mutedStyle.Render(" [locked]")
		}
	}

	line := cursor + indent + check + " " + label
	if m.session.Selection.IsSelected(n) {
		line = cursor + indent + selectedStyle.Render(check) + " " + label
	}
	return line
}

func (m Model) renderPlotPanel() string {
	var b strings.Builder
	title := "Plot"
	if m.panel.plot.Dim != "" {
		title += " (" + m.panel.plot.Dim + ")"
	}
	b.WriteString(panelTitleStyle.Render(title))

	if len(m.panel.markers) == 0 {
		b.WriteString("\n" + mutedStyle.Render("no selected regions"))
	}
	for _, mk := range m.panel.markers {
		line := fmt.Sprintf("%s  %s-%s", mk.Label, regions.FormatBound(mk.Lower), regions.FormatBound(mk.Upper))
		if !mk.Movable {
			line += " [locked]"
		}
		b.WriteString("\n" + line)
	}
	return panelStyle.Render(b.String())
}
