// Package register is the new-player form shown when the client starts
// without a player.
package register

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/ui/components"
	"github.com/abhisek/escaperoom/internal/ui/layout"
	"github.com/abhisek/escaperoom/internal/ui/theme"
)

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldCount
)

type userCreatedMsg struct {
	User *game.User
	Err  error
}

// RegisterScreen collects a username, email and password and creates the
// player.
type RegisterScreen struct {
	games      screen.Games
	next       func(*game.User) screen.Screen
	fields     [fieldCount]components.TextInput
	focus      int
	submitting bool
	errMsg     string
}

var _ screen.Screen = (*RegisterScreen)(nil)
var _ screen.KeyHintProvider = (*RegisterScreen)(nil)
var _ screen.TextEntry = (*RegisterScreen)(nil)

// New creates the form. next builds the screen shown once the player
// exists.
func New(games screen.Games, next func(*game.User) screen.Screen) *RegisterScreen {
	r := &RegisterScreen{games: games, next: next}
	r.fields[fieldUsername] = components.NewTextInput("Name", "explorer", 50)
	r.fields[fieldEmail] = components.NewTextInput("Email", "you@example.com", 100)
	r.fields[fieldPassword] = components.NewPasswordInput("Password")
	r.fields[fieldEmail].Blur()
	r.fields[fieldPassword].Blur()
	return r
}

func (r *RegisterScreen) Init() tea.Cmd {
	return r.fields[fieldUsername].Init()
}

func (r *RegisterScreen) Title() string {
	return "New Player"
}

func (r *RegisterScreen) Typing() bool {
	return !r.submitting
}

func (r *RegisterScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (r *RegisterScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case userCreatedMsg:
		r.submitting = false
		if msg.Err != nil {
			r.errMsg = describe(msg.Err)
			return r, nil
		}
		next := r.next(msg.User)
		return r, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if r.submitting {
			return r, nil
		}
		switch msg.String() {
		case "tab", "down":
			return r, r.move(1)
		case "shift+tab", "up":
			return r, r.move(-1)
		case "enter":
			if r.focus < fieldPassword {
				return r, r.move(1)
			}
			return r, r.submit()
		}
	}

	var cmd tea.Cmd
	r.fields[r.focus], cmd = r.fields[r.focus].Update(msg)
	return r, cmd
}

func (r *RegisterScreen) move(delta int) tea.Cmd {
	r.fields[r.focus].Blur()
	r.focus = (r.focus + delta + fieldCount) % fieldCount
	return r.fields[r.focus].Focus()
}

func (r *RegisterScreen) submit() tea.Cmd {
	in := service.NewUser{
		Username: strings.TrimSpace(r.fields[fieldUsername].Value()),
		Email:    strings.TrimSpace(r.fields[fieldEmail].Value()),
		Password: r.fields[fieldPassword].Value(),
	}
	if in.Username == "" || in.Email == "" || in.Password == "" {
		r.errMsg = "All fields are required."
		return nil
	}
	r.errMsg = ""
	r.submitting = true
	games := r.games
	return func() tea.Msg {
		u, err := games.CreateUser(context.Background(), in)
		return userCreatedMsg{User: u, Err: err}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, game.ErrConflict):
		return "That name or email is already taken."
	case errors.Is(err, game.ErrInvalidInput):
		return err.Error()
	default:
		return "Could not create the player: " + err.Error()
	}
}

func (r *RegisterScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Who dares enter?"))
	b.WriteString("\n\n")
	for i := range r.fields {
		b.WriteString(r.fields[i].View())
		b.WriteString("\n\n")
	}
	switch {
	case r.submitting:
		b.WriteString(theme.Hint.Render("Creating player..."))
	case r.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(r.errMsg))
	}

	card := theme.Card.Width(min(width-4, 60)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
