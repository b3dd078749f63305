package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors.
	colorPurple = lipgloss.Color("#A855F7")
	colorGreen  = lipgloss.Color("#22C55E")
	colorRed    = lipgloss.Color("#EF4444")
	colorYellow = lipgloss.Color("#EAB308")
	colorDim    = lipgloss.Color("#6B7280")
	colorCyan   = lipgloss.Color("#06B6D4")
	colorWhite  = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	// Modal trigger line shown while the modal is closed.
	triggerStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(colorPurple).
			Bold(true).
			Padding(0, 1)

	categoryHeaderStyle = lipgloss.NewStyle().
				Foreground(colorCyan).
				Bold(true)

	skillStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	categoryTagStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	confirmStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	previewBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)
