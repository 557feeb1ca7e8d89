package game

import (
	"math"
	"time"
)

const (
	// MinDifficulty and MaxDifficulty bound every stored puzzle difficulty.
	MinDifficulty = 0.1
	MaxDifficulty = 2.0

	// DefaultDifficulty replaces an absent puzzle difficulty at load time.
	DefaultDifficulty = 1.0
)

// Source records where a puzzle's content came from.
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
)

// User is a player account. Games reference users by ID.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Game is one play session. It owns its puzzles.
type Game struct {
	ID       int64
	UserID   int64
	Theme    string
	AgeGroup string

	// Difficulty is the player-selected base difficulty. It stands in for
	// the mean difficulty until a puzzle is solved.
	Difficulty int

	Score     int
	Storyline string
	StartTime time.Time
	EndTime   *time.Time
}

// Finished reports whether the game has an end time.
func (g *Game) Finished() bool {
	return g.EndTime != nil
}

// Puzzle is a single generated challenge within a game.
type Puzzle struct {
	ID       int64
	GameID   int64
	Question string

	// Answer is the canonical answer. Comparison is case-insensitive.
	Answer string
	Hint   string

	// Difficulty always lies in [MinDifficulty, MaxDifficulty].
	Difficulty float64

	// Attempts never decreases.
	Attempts int

	// TimeSpent is in seconds.
	TimeSpent float64

	// Solved moves from false to true once and stays there.
	Solved bool

	Source    Source
	CreatedAt time.Time
}

// NormalizeDifficulty maps an absent or out-of-range difficulty onto the
// stored range. Zero counts as absent.
func NormalizeDifficulty(d float64) float64 {
	if d == 0 || math.IsNaN(d) {
		return DefaultDifficulty
	}
	return ClampDifficulty(d)
}

// ClampDifficulty bounds d to [MinDifficulty, MaxDifficulty]. NaN maps to
// the lower bound.
func ClampDifficulty(d float64) float64 {
	switch {
	case math.IsNaN(d):
		return MinDifficulty
	case d < MinDifficulty:
		return MinDifficulty
	case d > MaxDifficulty:
		return MaxDifficulty
	}
	return d
}

// Normalize enforces the record invariants that can be repaired on load.
func (p *Puzzle) Normalize() {
	p.Difficulty = NormalizeDifficulty(p.Difficulty)
	if p.Attempts < 0 {
		p.Attempts = 0
	}
	if p.TimeSpent < 0 || math.IsNaN(p.TimeSpent) {
		p.TimeSpent = 0
	}
	if p.Source == "" {
		p.Source = SourceLLM
	}
}
