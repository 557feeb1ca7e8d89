package service

import (
	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/difficulty"
	"github.com/abhisek/escaperoom/internal/game"
)

// NewGame is the input to CreateGame.
type NewGame struct {
	UserID     int64
	Theme      string
	Difficulty int
	AgeGroup   string
}

// NewUser is the input to CreateUser.
type NewUser struct {
	Username string
	Email    string
	Password string
}

// Performance is a client-reported update of a puzzle's progress.
type Performance struct {
	TimeSpent float64
	Attempts  int
	Solved    bool
}

// CreatedGame is a new game with its initial puzzles.
type CreatedGame struct {
	Game    *game.Game
	Puzzles []game.Puzzle
}

// CheckResult is the verdict on a submitted answer together with the
// puzzle state after the check.
type CheckResult struct {
	Correct  bool
	Feedback string
	Tier     answer.Tier
	Puzzle   game.Puzzle

	// Points is the score awarded by this check, 0 unless the puzzle was
	// newly solved.
	Points int
}

// GameStats summarizes a game's progress.
type GameStats struct {
	Game           *game.Game
	Session        difficulty.Stats
	NextDifficulty float64
	Total          int
	Solved         int
	Fallbacks      int
	TotalAttempts  int
	TotalTime      float64
}
