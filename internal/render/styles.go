package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/christopherklint97/chatrail/internal/chip"
)

var (
	boldStyle = lipgloss.NewStyle().Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	faultStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("9")).
			PaddingLeft(1)

	faultTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	chipBase = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true)
)

func chipStyle(t chip.Type) lipgloss.Style {
	switch t {
	case chip.Employee:
		return chipBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14"))
	case chip.Department:
		return chipBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13"))
	case chip.PayRun:
		return chipBase.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("10"))
	default:
		return chipBase.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8"))
	}
}
