package browser

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.AdaptiveColor{Light: "#D75F00", Dark: "#FFAF5F"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#808080", Dark: "#6C6C6C"}
	colorError  = lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	colorInfo   = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}

	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	cursorStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	selectedStyle   = lipgloss.NewStyle().Foreground(colorInfo)
	groupStyle      = lipgloss.NewStyle().Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle      = lipgloss.NewStyle().Foreground(colorError)
	statusStyle     = lipgloss.NewStyle().Foreground(colorInfo)
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
)
