package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2C3E50")).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#3498DB")).
			Padding(0, 1)

	itemStyle   = lipgloss.NewStyle().PaddingLeft(2)
	cursorStyle = lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("#3498DB")).Bold(true)
	activeStyle = lipgloss.NewStyle().Background(lipgloss.Color("#EBF5FB")).Foreground(lipgloss.Color("#1B4F72"))
	metaStyle   = lipgloss.NewStyle().Faint(true)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true).Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#95A5A6")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#27AE60")).
			Padding(0, 1)
)
