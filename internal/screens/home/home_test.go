package home

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen/screentest"
	"github.com/abhisek/escaperoom/internal/screens/room"
	"github.com/abhisek/escaperoom/internal/screens/setup"
	"github.com/abhisek/escaperoom/internal/service"
)

func TestHome_ListsOpenGames(t *testing.T) {
	games := screentest.New()
	u := games.AddUser("ada")
	ctx := context.Background()
	_, err := games.CreateGame(ctx, service.NewGame{UserID: u.ID, Theme: "crypt", Difficulty: 1})
	require.NoError(t, err)
	done, err := games.CreateGame(ctx, service.NewGame{UserID: u.ID, Theme: "vault", Difficulty: 1})
	require.NoError(t, err)
	_, err = games.FinishGame(ctx, done.Game.ID)
	require.NoError(t, err)

	h := New(games, u)
	h.Update(h.Init()())

	require.Len(t, h.menu.Items, 3)
	assert.Equal(t, "Return to the crypt", h.menu.Items[1].Label)
	assert.Equal(t, 1, h.open)
	assert.Equal(t, 1, h.escaped)
	assert.Contains(t, h.View(100, 30), "Welcome back, ada")
}

func TestHome_NewRoomPushesSetup(t *testing.T) {
	games := screentest.New()
	h := New(games, games.AddUser("ada"))

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	_, ok = push.Screen.(*setup.SetupScreen)
	assert.True(t, ok)
}

func TestHome_ResumePushesRoom(t *testing.T) {
	games := screentest.New()
	u := games.AddUser("ada")
	_, err := games.CreateGame(context.Background(), service.NewGame{UserID: u.ID, Theme: "crypt", Difficulty: 1})
	require.NoError(t, err)

	h := New(games, u)
	h.Update(h.Init()())
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push := cmd().(router.PushScreenMsg)
	_, ok := push.Screen.(*room.RoomScreen)
	assert.True(t, ok)
}

func TestHome_ResumeReloads(t *testing.T) {
	games := screentest.New()
	h := New(games, games.AddUser("ada"))
	require.NotNil(t, h.Resume())
}
