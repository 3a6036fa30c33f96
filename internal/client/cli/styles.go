package cli

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#6C63FF")
	colorOver    = lipgloss.Color("#FF6B6B")
	colorUnder   = lipgloss.Color("#2ECC71")
	colorMuted   = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	overStyle  = lipgloss.NewStyle().Foreground(colorOver)
	underStyle = lipgloss.NewStyle().Foreground(colorUnder)
)
