package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/escaperoom/internal/ui/layout"
)

// Screen defines the interface for all client screens.
type Screen interface {
	// Init returns an initial command when the screen is first shown.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a game status in
// the header.
type StatusProvider interface {
	Status() *layout.Status
}

// Resumer is implemented by screens that reload data when they become
// active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// TextEntry is implemented by screens that currently have a focused text
// input, so global single-key shortcuts must not fire.
type TextEntry interface {
	Typing() bool
}
