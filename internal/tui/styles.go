package tui

import "github.com/charmbracelet/lipgloss"

const (
	accent  = lipgloss.Color("12")
	green   = lipgloss.Color("10")
	red     = lipgloss.Color("9")
	yellow  = lipgloss.Color("11")
	cyan    = lipgloss.Color("14")
	muted   = lipgloss.Color("8")
	pickBar = lipgloss.Color("13")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

	// Speaker labels above each turn.
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(accent)
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(green)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(pickBar).
			Padding(0, 1)

	errorStyle     = lipgloss.NewStyle().Bold(true).Foreground(red)
	warningStyle   = lipgloss.NewStyle().Foreground(yellow)
	dimStyle       = lipgloss.NewStyle().Foreground(muted)
	highlightStyle = lipgloss.NewStyle().Bold(true).Foreground(cyan)
	helpStyle      = lipgloss.NewStyle().Foreground(muted).Italic(true)
)
