package room

import (
	"time"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/service"
)

// roomLoadedMsg carries a resumed game and its puzzles.
type roomLoadedMsg struct {
	Game    *game.Game
	Puzzles []game.Puzzle
	Err     error
}

// puzzleReadyMsg is sent when the next puzzle has been generated.
type puzzleReadyMsg struct {
	Puzzle *game.Puzzle
	Err    error
}

// checkedMsg is the result of submitting an answer.
type checkedMsg struct {
	Result *service.CheckResult
	Err    error
}

// nextDifficultyMsg carries the difficulty the next puzzle will get.
type nextDifficultyMsg struct {
	Difficulty float64
	Err        error
}

// timerTickMsg advances the per-puzzle clock.
type timerTickMsg time.Time
