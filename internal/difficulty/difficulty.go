// Package difficulty computes puzzle difficulty from a session's
// performance. Everything here is pure and deterministic.
package difficulty

import (
	"math"

	"github.com/abhisek/escaperoom/internal/game"
)

const (
	// Step is the unit of every adjustment.
	Step = 0.1

	// HighAttempts and LowAttempts bound the mean attempts per solve.
	HighAttempts = 3.0
	LowAttempts  = 2.0

	// SlowSeconds and FastSeconds bound the mean time per solve.
	SlowSeconds = 300.0
	FastSeconds = 60.0

	// nudgeCap caps both minutes spent and attempts in Nudge.
	nudgeCap = 5.0
)

// Stats summarizes the solved puzzles of one session.
type Stats struct {
	AvgDifficulty float64
	AvgAttempts   float64
	AvgTime       float64
	Solved        int
}

// Aggregate averages difficulty, attempts and time over the solved
// puzzles. With nothing solved, AvgDifficulty is base and the other
// means are zero.
func Aggregate(base float64, puzzles []game.Puzzle) Stats {
	var (
		st                  Stats
		sumD, sumA, sumTime float64
	)
	for _, p := range puzzles {
		if !p.Solved {
			continue
		}
		st.Solved++
		sumD += game.NormalizeDifficulty(p.Difficulty)
		sumA += float64(p.Attempts)
		sumTime += p.TimeSpent
	}

	if st.Solved == 0 {
		st.AvgDifficulty = base
		return st
	}

	n := float64(st.Solved)
	st.AvgDifficulty = sumD / n
	st.AvgAttempts = sumA / n
	st.AvgTime = sumTime / n
	return st
}

// Adjust moves the mean difficulty one step per signal: down for many
// attempts or slow solves, up for few attempts or fast solves.
func Adjust(st Stats) float64 {
	d := st.AvgDifficulty

	switch {
	case st.AvgAttempts > HighAttempts:
		d -= Step
	case st.AvgAttempts < LowAttempts:
		d += Step
	}

	switch {
	case st.AvgTime > SlowSeconds:
		d -= Step
	case st.AvgTime < FastSeconds:
		d += Step
	}

	return Clamp(d)
}

// Next returns the difficulty for the next puzzle of a session whose
// player picked base. With nothing solved the means are base, 0 and 0,
// so the first puzzle lands two steps above base.
func Next(base int, puzzles []game.Puzzle) float64 {
	return Adjust(Aggregate(float64(base), puzzles))
}

// Nudge raises a just-solved puzzle's difficulty by up to one step.
// Quick solves with few attempts get the full step; solves at or past
// five minutes and five attempts get nothing. The result is never lower
// than the input.
func Nudge(p game.Puzzle) float64 {
	timeFactor := math.Min(math.Max(p.TimeSpent, 0)/60, nudgeCap) / nudgeCap
	attemptFactor := math.Min(float64(max(p.Attempts, 0)), nudgeCap) / nudgeCap

	delta := Step * (1 - (timeFactor+attemptFactor)/2)
	return Clamp(game.NormalizeDifficulty(p.Difficulty) + delta)
}

// Clamp bounds d to the stored difficulty range. NaN maps to the lower
// bound.
func Clamp(d float64) float64 {
	return game.ClampDifficulty(d)
}

// Points is the score awarded for solving a puzzle of difficulty d.
func Points(d float64) int {
	return int(math.Round(Clamp(d) * 100))
}
