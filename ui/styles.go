package ui

import "github.com/charmbracelet/lipgloss"

var (
	fuchsia   = lipgloss.Color("#EE6FF8")
	cream     = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	gray      = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}

	statusBarBg = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
	statusBarFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
)

var (
	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(gray)

	titleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Padding(0, 1)

	labelStyle        = lipgloss.NewStyle().Foreground(gray).Width(8)
	focusedLabelStyle = labelStyle.Foreground(fuchsia)

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(darkGreen).
			Padding(0, 1).
			MarginRight(1)

	disabledButtonStyle = lipgloss.NewStyle().
				Foreground(gray).
				Background(statusBarBg).
				Padding(0, 1).
				MarginRight(1)

	selectedVoiceStyle = lipgloss.NewStyle().Foreground(mintGreen).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(statusBarFg).
			Background(statusBarBg)

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen)

	errorMessageStyle = lipgloss.NewStyle().Foreground(red)
)
