package room

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/ui/layout"
	"github.com/abhisek/escaperoom/internal/ui/theme"
)

// storyLines caps how much of the storyline stays on screen.
const storyLines = 4

func (r *RoomScreen) View(width, height int) string {
	if r.errMsg != "" {
		return layout.RenderError(width, height, r.errMsg)
	}
	if r.busy != "" && r.active() == nil {
		return layout.RenderLoading(width, height, r.busy)
	}

	cw := min(width-4, 90)
	if layout.IsCompactWidth(width) {
		cw = width - 2
	}

	var sections []string
	if r.game != nil && r.game.Storyline != "" {
		sections = append(sections, renderStory(r.game.Storyline, cw, storyLines))
	}

	if p := r.active(); p != nil {
		sections = append(sections, r.renderProgress(cw))
		sections = append(sections, r.renderPuzzle(p, cw))
		if r.showHint {
			sections = append(sections, theme.Hint.Width(cw).Render("Hint: "+p.Hint))
		}
		sections = append(sections, r.renderAnswer(p, cw))
	}

	if r.busy != "" {
		sections = append(sections, theme.Hint.Render(r.busy))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, content)
}

func renderStory(story string, width, maxLines int) string {
	wrapped := lipgloss.NewStyle().Width(width - 6).Render(story)
	lines := strings.Split(wrapped, "\n")
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], strings.TrimRight(lines[maxLines-1], " ")+" …")
	}
	return theme.Scroll.Width(width).Render(strings.Join(lines, "\n"))
}

func (r *RoomScreen) renderProgress(width int) string {
	solved := 0
	for _, p := range r.puzzles {
		if p.Solved {
			solved++
		}
	}
	secs := int(r.timeSpent())
	text := fmt.Sprintf("Puzzle %d of %d   ·   %d solved   ·   %d:%02d",
		r.current+1, len(r.puzzles), solved, secs/60, secs%60)
	return lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).Render(text)
}

func (r *RoomScreen) renderPuzzle(p *game.Puzzle, width int) string {
	var b strings.Builder
	b.WriteString(theme.Body.Render(p.Question))
	b.WriteString("\n\n")

	meta := fmt.Sprintf("difficulty %.2f   attempts %d", p.Difficulty, p.Attempts)
	if p.Source == game.SourceFallback {
		meta += "   (backup puzzle)"
	}
	b.WriteString(theme.Hint.Render(meta))

	return theme.Card.Width(width).Render(b.String())
}

func (r *RoomScreen) renderAnswer(p *game.Puzzle, width int) string {
	var lines []string
	if !p.Solved {
		lines = append(lines, "› "+r.input.View())
	}

	if fb := r.feedback; fb != nil {
		style := theme.Incorrect
		switch fb.Tier {
		case answer.TierCorrect:
			style = theme.Correct
		case answer.TierClose:
			style = theme.Close
		}
		line := style.Render(fb.Feedback)
		if fb.Points > 0 {
			line += lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("   +%d", fb.Points))
		}
		lines = append(lines, line)
	}

	if p.Solved {
		lines = append(lines, theme.Hint.Render("The answer was "+p.Answer+"."))
		if r.next > 0 {
			lines = append(lines, theme.Hint.Render(fmt.Sprintf("Next puzzle difficulty: %.2f", r.next)))
		}
	}

	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}
