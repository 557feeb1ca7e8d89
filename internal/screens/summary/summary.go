package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/ui/components"
	"github.com/abhisek/escaperoom/internal/ui/layout"
	"github.com/abhisek/escaperoom/internal/ui/theme"
)

type statsMsg struct {
	Stats *service.GameStats
	Err   error
}

// SummaryScreen finishes a game and shows its stats.
type SummaryScreen struct {
	games  screen.Games
	gameID int64
	stats  *service.GameStats
	errMsg string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for gameID. The game is finished when the
// screen opens.
func New(games screen.Games, gameID int64) *SummaryScreen {
	return &SummaryScreen{games: games, gameID: gameID}
}

func (s *SummaryScreen) Init() tea.Cmd {
	games, id := s.games, s.gameID
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := games.FinishGame(ctx, id); err != nil {
			return statsMsg{Err: err}
		}
		st, err := games.GameStats(ctx, id)
		return statsMsg{Stats: st, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Escaped"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to the lobby"},
	}
}

func (s *SummaryScreen) Status() *layout.Status {
	if s.stats == nil {
		return nil
	}
	return &layout.Status{Score: s.stats.Game.Score, Difficulty: s.stats.NextDifficulty}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.stats = msg.Stats
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "esc", "q":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.RenderError(width, height, s.errMsg)
	}
	st := s.stats
	if st == nil {
		return layout.RenderLoading(width, height, "Tallying the score...")
	}

	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	b.WriteString(center(theme.Title.Render(fmt.Sprintf("The %s is behind you", st.Game.Theme))))
	b.WriteString("\n\n")

	if st.Game.EndTime != nil {
		d := st.Game.EndTime.Sub(st.Game.StartTime).Round(time.Second)
		b.WriteString(center(theme.Subtitle.Render("Time in the room: " + formatDuration(d))))
		b.WriteString("\n\n")
	}

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("Score  %d", st.Game.Score))))
	b.WriteString("\n\n")

	percent := 0.0
	if st.Total > 0 {
		percent = float64(st.Solved) / float64(st.Total)
	}
	bar := components.ProgressBar{
		Label:   "Solved",
		Percent: percent,
		Caption: fmt.Sprintf("%d/%d", st.Solved, st.Total),
		Width:   min(width-8, 60),
	}
	b.WriteString(center(bar.View()))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Attempts", fmt.Sprintf("%d", st.TotalAttempts)},
		{"Time on puzzles", formatDuration(time.Duration(st.TotalTime * float64(time.Second)).Round(time.Second))},
		{"Avg difficulty solved", fmt.Sprintf("%.2f", st.Session.AvgDifficulty)},
		{"Avg attempts per solve", fmt.Sprintf("%.1f", st.Session.AvgAttempts)},
		{"Next room difficulty", fmt.Sprintf("%.2f", st.NextDifficulty)},
	}
	if st.Fallbacks > 0 {
		rows = append(rows, [2]string{"Backup puzzles", fmt.Sprintf("%d", st.Fallbacks)})
	}
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(24)
	value := lipgloss.NewStyle().Foreground(theme.Text).Width(10).Align(lipgloss.Right)
	for _, r := range rows {
		b.WriteString(center(label.Render(r[0]) + value.Render(r[1])))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
