package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: dim dungeon tones with a brass accent.
var (
	Primary   = lipgloss.Color("#D4A24C") // Brass
	Secondary = lipgloss.Color("#4FB3A9") // Verdigris
	Accent    = lipgloss.Color("#E0673B") // Torchlight
	Success   = lipgloss.Color("#6CCB5F") // Green
	Warning   = lipgloss.Color("#F2C14E") // Amber
	Error     = lipgloss.Color("#E5484D") // Red
	Text      = lipgloss.Color("#EDE6D6") // Parchment
	TextDim   = lipgloss.Color("#8C8577") // Dust
	BgDark    = lipgloss.Color("#14110F") // Soot
	BgCard    = lipgloss.Color("#221D19") // Oak
	Border    = lipgloss.Color("#3B332C") // Iron
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim).
			Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Scroll = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(Primary).
		Foreground(Text).
		Padding(1, 2)
)

// Answer feedback, keyed by closeness.
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Close = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)
