// Package answer judges submitted answers against a puzzle.
package answer

import (
	"strings"
	"unicode/utf8"

	"github.com/abhisek/escaperoom/internal/difficulty"
	"github.com/abhisek/escaperoom/internal/game"
)

// Feedback strings returned to the player.
const (
	FeedbackCorrect   = "Correct!"
	FeedbackIncorrect = "Incorrect. Try again!"
	SuffixClose       = " You're close!"
	SuffixFar         = " You're not quite there yet."
)

// Tier grades an answer.
type Tier string

const (
	TierCorrect Tier = "correct"
	TierClose   Tier = "close"
	TierFar     Tier = "far"
)

// Result is the outcome of one evaluation.
type Result struct {
	Correct  bool
	Feedback string
	Tier     Tier

	// NewlySolved is true only when this evaluation moved the puzzle from
	// unsolved to solved. Scoring keys off it.
	NewlySolved bool
}

// Evaluate judges submitted against p and applies the side effects to p:
// attempts always goes up by one, and a correct answer marks the puzzle
// solved and nudges its difficulty. Answering an already solved puzzle
// correctly repeats the nudge.
//
// Matching is an exact case-insensitive comparison without trimming.
func Evaluate(p *game.Puzzle, submitted string) Result {
	p.Attempts++

	if strings.EqualFold(submitted, p.Answer) {
		newly := !p.Solved
		p.Solved = true
		p.Difficulty = difficulty.Nudge(*p)
		return Result{
			Correct:     true,
			Feedback:    FeedbackCorrect,
			Tier:        TierCorrect,
			NewlySolved: newly,
		}
	}

	if IsClose(submitted, p.Answer) {
		return Result{Feedback: FeedbackIncorrect + SuffixClose, Tier: TierClose}
	}
	return Result{Feedback: FeedbackIncorrect + SuffixFar, Tier: TierFar}
}

// IsClose reports whether submitted shares more distinct characters with
// canonical than half of canonical's length. It is a lexical heuristic
// only: "tca" is close to "cat".
func IsClose(submitted, canonical string) bool {
	want := charSet(canonical)
	overlap := 0
	for r := range charSet(submitted) {
		if _, ok := want[r]; ok {
			overlap++
		}
	}
	return float64(overlap) > float64(utf8.RuneCountInString(canonical))/2
}

func charSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range strings.ToLower(s) {
		set[r] = struct{}{}
	}
	return set
}
