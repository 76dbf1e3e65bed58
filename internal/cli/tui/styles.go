package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/runeconomy/internal/narrative"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("86")  // Cyan
	colorSecondary = lipgloss.Color("240") // Gray
	colorSuccess   = lipgloss.Color("82")  // Green
	colorWarning   = lipgloss.Color("214") // Orange
	colorDanger    = lipgloss.Color("196") // Red
	colorMuted     = lipgloss.Color("245") // Light gray
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary)

	// Range bar
	rangeEmptyStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	rangeFilledStyle = lipgloss.NewStyle().
				Foreground(colorSuccess)

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWarning)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderBottom(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colorSecondary)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// Rows outside the power filter
	excludedStyle = lipgloss.NewStyle().
			Foreground(colorSecondary)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)
)

// associationColor colors the correlation direction
func associationColor(a narrative.Association) lipgloss.Color {
	switch a {
	case narrative.AssociationPositive:
		return colorSuccess
	case narrative.AssociationNegative:
		return colorDanger
	default:
		return colorMuted
	}
}
