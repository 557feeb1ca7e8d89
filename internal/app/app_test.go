package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/screen/screentest"
	"github.com/abhisek/escaperoom/internal/screens/home"
	"github.com/abhisek/escaperoom/internal/screens/register"
	"github.com/abhisek/escaperoom/internal/screens/welcome"
)

func TestNewAppModel_InitialScreens(t *testing.T) {
	games := screentest.New()
	u := games.AddUser("ada")

	m := newAppModel(Options{Games: games}, nil)
	_, ok := m.router.Active().(*welcome.WelcomeScreen)
	assert.True(t, ok)

	m = newAppModel(Options{Games: games, SkipSplash: true}, nil)
	_, ok = m.router.Active().(*register.RegisterScreen)
	assert.True(t, ok)

	m = newAppModel(Options{Games: games, SkipSplash: true}, u)
	_, ok = m.router.Active().(*home.HomeScreen)
	assert.True(t, ok)
}

func TestAppModel_QuitKeys(t *testing.T) {
	games := screentest.New()
	m := newAppModel(Options{Games: games, SkipSplash: true}, &game.User{ID: 1, Username: "ada"})

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)

	_, cmd = m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	_, ok = cmd().(tea.QuitMsg)
	assert.True(t, ok, "q quits from the lobby")
}

func TestAppModel_QTypedInForm(t *testing.T) {
	m := newAppModel(Options{Games: screentest.New(), SkipSplash: true}, nil)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if cmd != nil {
		_, quit := cmd().(tea.QuitMsg)
		assert.False(t, quit, "q is typed into the form")
	}
}

func TestAppModel_View(t *testing.T) {
	m := newAppModel(Options{Games: screentest.New(), SkipSplash: true}, &game.User{ID: 1, Username: "ada"})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	v := updated.(AppModel).View()
	assert.True(t, v.AltScreen)

	small, _ := m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	assert.NotNil(t, small.(AppModel).View())
}
