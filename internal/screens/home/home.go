package home

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/screens/room"
	"github.com/abhisek/escaperoom/internal/screens/setup"
	"github.com/abhisek/escaperoom/internal/ui/components"
	"github.com/abhisek/escaperoom/internal/ui/theme"
)

// maxResumable caps the open games listed in the menu.
const maxResumable = 5

type gamesLoadedMsg struct {
	Games []game.Game
	Err   error
}

// HomeScreen is the lobby: start a new room or return to an open one.
type HomeScreen struct {
	games   screen.Games
	user    *game.User
	menu    components.Menu
	open    int
	escaped int
	best    int
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates the lobby for user.
func New(games screen.Games, user *game.User) *HomeScreen {
	h := &HomeScreen{games: games, user: user}
	h.menu = h.buildMenu(nil)
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the game list when returning from a room.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Title() string {
	return "Lobby"
}

func (h *HomeScreen) load() tea.Cmd {
	games, id := h.games, h.user.ID
	return func() tea.Msg {
		list, err := games.ListGames(context.Background(), id)
		return gamesLoadedMsg{Games: list, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if m, ok := msg.(gamesLoadedMsg); ok {
		h.loaded = true
		if m.Err != nil {
			h.errMsg = m.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		h.summarize(m.Games)
		h.menu = h.buildMenu(m.Games)
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) summarize(list []game.Game) {
	h.open, h.escaped, h.best = 0, 0, 0
	for i := range list {
		if list[i].Finished() {
			h.escaped++
		} else {
			h.open++
		}
		h.best = max(h.best, list[i].Score)
	}
}

// buildMenu lists a new-room entry, the most recent open games and quit.
func (h *HomeScreen) buildMenu(list []game.Game) components.Menu {
	games, userID := h.games, h.user.ID
	items := []components.MenuItem{
		{Label: "ENTER A NEW ROOM", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: setup.New(games, userID)}
			}
		}},
	}

	shown := 0
	for i := len(list) - 1; i >= 0 && shown < maxResumable; i-- {
		g := list[i]
		if g.Finished() {
			continue
		}
		shown++
		id := g.ID
		items = append(items, components.MenuItem{
			Label:  "Return to the " + g.Theme,
			Detail: fmt.Sprintf("score %d", g.Score),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: room.Resume(games, id)}
				}
			},
		})
	}

	items = append(items, components.MenuItem{Label: "LEAVE", Action: func() tea.Cmd { return tea.Quit }})
	return components.NewMenu(items)
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string
	sections = append(sections, theme.Title.Render(fmt.Sprintf("Welcome back, %s", h.user.Username)))

	stats := "Loading your rooms..."
	if h.loaded {
		stats = fmt.Sprintf("%d open   ·   %d escaped   ·   best score %d", h.open, h.escaped, h.best)
	}
	sections = append(sections, theme.Subtitle.Render(stats))

	if h.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.Error).Render(h.errMsg))
	}

	sections = append(sections, theme.Card.Width(min(width-4, 60)).Render(strings.TrimRight(h.menu.View(), "\n")))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n\n"))
}
