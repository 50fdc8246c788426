package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	// NotificationStyle for agent-server notifications.
	NotificationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))

	// UpStyle and DownStyle color chart bars by close-over-open direction.
	UpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	DownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FormatCell renders one table value; missing cells show as a dash.
func FormatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}

	return fmt.Sprintf("%.2f", v)
}
