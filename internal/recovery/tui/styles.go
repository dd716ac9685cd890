package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorTitle = lipgloss.Color("12")
	colorError = lipgloss.Color("196")
	colorInfo  = lipgloss.Color("76")
	colorMuted = lipgloss.Color("242")
	colorFocus = lipgloss.Color("39")
	colorWhite = lipgloss.Color("15")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(colorFocus).
				Bold(true)

	fieldErrorStyle = lipgloss.NewStyle().
			Foreground(colorError)

	infoNoticeStyle = lipgloss.NewStyle().
			Foreground(colorInfo)

	errorNoticeStyle = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	pendingStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Italic(true)
)
