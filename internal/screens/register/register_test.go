package register

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/screen/screentest"
)

type stubScreen struct{ user *game.User }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "" }
func (s *stubScreen) Title() string                          { return "Home" }

func typeText(r *RegisterScreen, text string) {
	for _, c := range text {
		r.Update(tea.KeyPressMsg{Code: c, Text: string(c)})
	}
}

func enter(r *RegisterScreen) tea.Cmd {
	_, cmd := r.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestRegister_CreatesUserAndReplaces(t *testing.T) {
	games := screentest.New()
	r := New(games, func(u *game.User) screen.Screen { return &stubScreen{user: u} })

	typeText(r, "ada")
	enter(r)
	typeText(r, "ada@example.com")
	enter(r)
	typeText(r, "correct horse")
	cmd := enter(r)
	require.NotNil(t, cmd)
	assert.True(t, r.submitting)

	_, cmd = r.Update(cmd())
	require.NotNil(t, cmd)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "ada", replace.Screen.(*stubScreen).user.Username)
	assert.Equal(t, "ada@example.com", replace.Screen.(*stubScreen).user.Email)
}

func TestRegister_RequiresAllFields(t *testing.T) {
	games := screentest.New()
	r := New(games, func(*game.User) screen.Screen { return &stubScreen{} })

	typeText(r, "ada")
	enter(r)
	enter(r)
	cmd := enter(r)
	assert.Nil(t, cmd)
	assert.Equal(t, "All fields are required.", r.errMsg)
	assert.Empty(t, games.Calls)
}

func TestRegister_ConflictShowsMessage(t *testing.T) {
	r := New(screentest.New(), func(*game.User) screen.Screen { return &stubScreen{} })
	r.submitting = true

	_, cmd := r.Update(userCreatedMsg{Err: game.ErrConflict})
	assert.Nil(t, cmd)
	assert.False(t, r.submitting)
	assert.Contains(t, r.View(80, 24), "already taken")
}

func TestRegister_TabCyclesFields(t *testing.T) {
	r := New(screentest.New(), func(*game.User) screen.Screen { return &stubScreen{} })
	r.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, fieldEmail, r.focus)
	r.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, fieldUsername, r.focus)
	r.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, fieldPassword, r.focus)
}
