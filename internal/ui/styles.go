package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Note: Warp terminal fix is in internal/termfix package, imported first in main.go

var (
	ColorCyan     = lipgloss.Color("#00FFFF")
	ColorGreen    = lipgloss.Color("#00FF00")
	ColorYellow   = lipgloss.Color("#FFFF00")
	ColorRed      = lipgloss.Color("#FF0000")
	ColorWhite    = lipgloss.Color("#FFFFFF")
	ColorDarkGray = lipgloss.Color("8")
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(ColorCyan).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	SubtleStyle  = lipgloss.NewStyle().Foreground(ColorDarkGray)
	URLStyle     = lipgloss.NewStyle().Foreground(ColorCyan).Underline(true)
)

func init() {
	// ANSI 8 is unreadable on light backgrounds
	if !termenv.HasDarkBackground() {
		ColorDarkGray = lipgloss.Color("240")
		SubtleStyle = lipgloss.NewStyle().Foreground(ColorDarkGray)
	}
}

func BranchColor(branch string) lipgloss.Color {
	switch branch {
	case "dev":
		return ColorGreen
	case "staging":
		return ColorYellow
	case "main", "master":
		return ColorRed
	default:
		return ColorWhite
	}
}
