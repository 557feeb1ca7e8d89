package difficulty

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/escaperoom/internal/game"
)

func solved(d float64, attempts int, secs float64) game.Puzzle {
	return game.Puzzle{Difficulty: d, Attempts: attempts, TimeSpent: secs, Solved: true}
}

func TestAggregate(t *testing.T) {
	t.Run("nothing solved falls back to base", func(t *testing.T) {
		st := Aggregate(1.0, []game.Puzzle{{Difficulty: 1.8, Attempts: 7}})
		assert.Equal(t, Stats{AvgDifficulty: 1.0}, st)
	})

	t.Run("means over solved only", func(t *testing.T) {
		st := Aggregate(1.0, []game.Puzzle{
			solved(1.2, 2, 100),
			solved(1.4, 4, 200),
			{Difficulty: 0.1, Attempts: 9, TimeSpent: 999},
		})
		assert.Equal(t, 2, st.Solved)
		assert.InDelta(t, 1.3, st.AvgDifficulty, 1e-9)
		assert.InDelta(t, 3.0, st.AvgAttempts, 1e-9)
		assert.InDelta(t, 150.0, st.AvgTime, 1e-9)
	})

	t.Run("absent difficulty counts as 1.0", func(t *testing.T) {
		st := Aggregate(2.0, []game.Puzzle{solved(0, 1, 10), solved(1.5, 1, 10)})
		assert.InDelta(t, 1.25, st.AvgDifficulty, 1e-9)
	})
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name string
		st   Stats
		want float64
	}{
		{"many attempts, fast", Stats{AvgDifficulty: 1.0, AvgAttempts: 4, AvgTime: 0}, 1.0},
		{"many attempts, moderate time", Stats{AvgDifficulty: 1.0, AvgAttempts: 4, AvgTime: 100}, 0.9},
		{"few attempts, slow", Stats{AvgDifficulty: 1.9, AvgAttempts: 1, AvgTime: 400}, 1.9},
		{"few attempts, fast", Stats{AvgDifficulty: 1.0, AvgAttempts: 1, AvgTime: 30}, 1.2},
		{"many attempts, slow", Stats{AvgDifficulty: 1.0, AvgAttempts: 5, AvgTime: 600}, 0.8},
		{"thresholds are exclusive", Stats{AvgDifficulty: 1.0, AvgAttempts: 3, AvgTime: 300}, 1.0},
		{"lower thresholds are exclusive", Stats{AvgDifficulty: 1.0, AvgAttempts: 2, AvgTime: 60}, 1.0},
		{"clamped high", Stats{AvgDifficulty: 2.0, AvgAttempts: 1, AvgTime: 10}, 2.0},
		{"clamped low", Stats{AvgDifficulty: 0.1, AvgAttempts: 9, AvgTime: 900}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Adjust(tt.st), 1e-9)
		})
	}
}

func TestAdjust_AlwaysInRange(t *testing.T) {
	for _, d := range []float64{-100, -1, 0, 0.05, 0.1, 1, 1.95, 2, 3, 1e9} {
		for _, a := range []float64{0, 1, 2, 2.5, 3, 4, 100} {
			for _, secs := range []float64{0, 30, 60, 120, 300, 301, 1e6} {
				got := Adjust(Stats{AvgDifficulty: d, AvgAttempts: a, AvgTime: secs})
				assert.GreaterOrEqual(t, got, game.MinDifficulty)
				assert.LessOrEqual(t, got, game.MaxDifficulty)
			}
		}
	}
}

func TestAdjust_NonFinite(t *testing.T) {
	assert.Equal(t, game.MinDifficulty, Adjust(Stats{AvgDifficulty: math.NaN()}))
	assert.Equal(t, game.MaxDifficulty, Adjust(Stats{AvgDifficulty: math.Inf(1)}))
	assert.Equal(t, game.MinDifficulty, Adjust(Stats{AvgDifficulty: math.Inf(-1), AvgAttempts: 1}))
}

func TestNext(t *testing.T) {
	assert.Equal(t, 2.0, Next(5, nil), "base is clamped")
	assert.InDelta(t, 1.2, Next(1, nil), 1e-9, "no solves: zero attempts and time both raise")
	assert.InDelta(t, 1.2, Next(1, []game.Puzzle{{Difficulty: 1.7}}), 1e-9, "unsolved puzzles ignored")
	assert.Equal(t, Adjust(Aggregate(2, nil)), Next(2, nil))
	assert.InDelta(t, 1.4, Next(1, []game.Puzzle{solved(1.2, 1, 30)}), 1e-9)
}

func TestNudge(t *testing.T) {
	tests := []struct {
		name string
		p    game.Puzzle
		want float64
	}{
		{"quick single attempt", solved(1.0, 1, 30), 1.085},
		{"instant", solved(1.0, 0, 0), 1.1},
		{"slow and many attempts", solved(1.0, 5, 300), 1.0},
		{"beyond caps", solved(1.0, 50, 10_000), 1.0},
		{"upper bound", solved(1.98, 1, 0), 2.0},
		{"absent difficulty", solved(0, 5, 300), 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Nudge(tt.p), 1e-9)
		})
	}
}

func TestNudge_NeverLowers(t *testing.T) {
	for _, d := range []float64{0.1, 0.5, 1, 1.5, 2} {
		for attempts := range 10 {
			for _, secs := range []float64{0, 59, 60, 299, 300, 1e5} {
				p := solved(d, attempts, secs)
				assert.GreaterOrEqual(t, Nudge(p), d)
			}
		}
	}
}

func TestPoints(t *testing.T) {
	assert.Equal(t, 125, Points(1.25))
	assert.Equal(t, 100, Points(1.0))
	assert.Equal(t, 200, Points(5))
	assert.Equal(t, 10, Points(math.NaN()))
}
