// Package app is the terminal play client: a Bubble Tea program driving
// the game service through a stack of screens.
package app

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/screens/home"
	"github.com/abhisek/escaperoom/internal/screens/register"
	"github.com/abhisek/escaperoom/internal/screens/welcome"
	"github.com/abhisek/escaperoom/internal/ui/layout"
)

// Options configures the client.
type Options struct {
	Games screen.Games

	// UserID selects an existing player. Zero shows the new-player form.
	UserID int64

	// SkipSplash starts directly on the lobby or the form.
	SkipSplash bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options, user *game.User) AppModel {
	first := func() screen.Screen {
		if user != nil {
			return home.New(opts.Games, user)
		}
		return register.New(opts.Games, func(u *game.User) screen.Screen {
			return home.New(opts.Games, u)
		})
	}

	var initial screen.Screen
	if opts.SkipSplash {
		initial = first()
	} else {
		initial = welcome.New(first)
	}
	return AppModel{router: router.New(initial)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		case "q":
			if te, ok := m.router.Active().(screen.TextEntry); !ok || !te.Typing() {
				if m.router.Depth() == 1 {
					return m, tea.Quit
				}
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	var status *layout.Status
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if kp, ok := active.(screen.KeyHintProvider); ok {
		if hints := kp.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program. A non-zero UserID must name an
// existing player.
func Run(ctx context.Context, opts Options) error {
	var user *game.User
	if opts.UserID != 0 {
		u, err := opts.Games.GetUser(ctx, opts.UserID)
		if err != nil {
			return fmt.Errorf("load player %d: %w", opts.UserID, err)
		}
		user = u
	}

	p := tea.NewProgram(newAppModel(opts, user), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run client: %w", err)
	}
	return nil
}
