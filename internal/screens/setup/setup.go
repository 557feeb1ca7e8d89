// Package setup is the new-game form: theme, age group and starting
// difficulty.
package setup

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/screens/room"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/ui/components"
	"github.com/abhisek/escaperoom/internal/ui/layout"
	"github.com/abhisek/escaperoom/internal/ui/theme"
)

// AgeGroups offered by the form.
var AgeGroups = []string{"kids", "teens", "adults"}

// Difficulties maps the selectable starting levels to labels.
var Difficulties = []string{"Easy", "Medium", "Hard"}

const (
	stepTheme = iota
	stepAge
	stepDifficulty
)

type gameCreatedMsg struct {
	Created *service.CreatedGame
	Err     error
}

// SetupScreen collects the new-game settings and creates the game.
type SetupScreen struct {
	games  screen.Games
	userID int64

	step       int
	theme      components.TextInput
	age        int
	difficulty int

	creating bool
	errMsg   string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)
var _ screen.TextEntry = (*SetupScreen)(nil)

// New creates the form for userID.
func New(games screen.Games, userID int64) *SetupScreen {
	return &SetupScreen{
		games:  games,
		userID: userID,
		theme:  components.NewTextInput("Theme", "haunted lighthouse", 80),
		age:    len(AgeGroups) - 1,
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return s.theme.Init()
}

func (s *SetupScreen) Title() string {
	return "New Room"
}

func (s *SetupScreen) Typing() bool {
	return s.step == stepTheme && !s.creating
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	if s.step == stepTheme {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Choose"},
		{Key: "Enter", Description: "Next"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gameCreatedMsg:
		s.creating = false
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := room.New(s.games, msg.Created)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case tea.KeyPressMsg:
		if s.creating {
			return s, nil
		}
		return s.handleKey(msg)
	}

	if s.step == stepTheme {
		var cmd tea.Cmd
		s.theme, cmd = s.theme.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter", "tab":
		return s, s.forward()
	case "shift+tab":
		if s.step > stepTheme {
			s.step--
			if s.step == stepTheme {
				return s, s.theme.Focus()
			}
		}
		return s, nil
	case "left", "h":
		if s.step != stepTheme {
			s.shift(-1)
			return s, nil
		}
	case "right", "l":
		if s.step != stepTheme {
			s.shift(1)
			return s, nil
		}
	}

	if s.step == stepTheme {
		var cmd tea.Cmd
		s.theme, cmd = s.theme.Update(msg)
		s.errMsg = ""
		return s, cmd
	}
	return s, nil
}

func (s *SetupScreen) shift(delta int) {
	switch s.step {
	case stepAge:
		s.age = (s.age + delta + len(AgeGroups)) % len(AgeGroups)
	case stepDifficulty:
		s.difficulty = (s.difficulty + delta + len(Difficulties)) % len(Difficulties)
	}
}

func (s *SetupScreen) forward() tea.Cmd {
	switch s.step {
	case stepTheme:
		if strings.TrimSpace(s.theme.Value()) == "" {
			s.errMsg = "Every room needs a theme."
			return nil
		}
		s.theme.Blur()
		s.step = stepAge
		return nil
	case stepAge:
		s.step = stepDifficulty
		return nil
	}
	return s.create()
}

func (s *SetupScreen) create() tea.Cmd {
	s.creating = true
	s.errMsg = ""
	games := s.games
	in := service.NewGame{
		UserID:     s.userID,
		Theme:      strings.TrimSpace(s.theme.Value()),
		AgeGroup:   AgeGroups[s.age],
		Difficulty: s.difficulty + 1,
	}
	return func() tea.Msg {
		created, err := games.CreateGame(context.Background(), in)
		return gameCreatedMsg{Created: created, Err: err}
	}
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Design your room"))
	b.WriteString("\n\n")
	b.WriteString(s.theme.View())
	b.WriteString("\n\n")
	b.WriteString(renderChoice("Age group", AgeGroups, s.age, s.step == stepAge))
	b.WriteString("\n\n")
	b.WriteString(renderChoice("Difficulty", Difficulties, s.difficulty, s.step == stepDifficulty))
	b.WriteString("\n\n")

	switch {
	case s.creating:
		b.WriteString(theme.Hint.Render("Building the room and its first puzzles..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	card := theme.Card.Width(min(width-4, 64)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func renderChoice(label string, options []string, selected int, focused bool) string {
	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if focused {
		labelStyle = labelStyle.Foreground(theme.Primary).Bold(true)
	}

	parts := make([]string, len(options))
	for i, o := range options {
		if i == selected {
			parts[i] = lipgloss.NewStyle().Foreground(theme.BgDark).Background(theme.Secondary).Render(fmt.Sprintf(" %s ", o))
		} else {
			parts[i] = lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf(" %s ", o))
		}
	}
	return labelStyle.Render(label) + "\n" + strings.Join(parts, " ")
}
