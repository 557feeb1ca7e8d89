package puzzlegen

import "github.com/abhisek/escaperoom/internal/game"

// Input carries everything needed to generate one puzzle.
type Input struct {
	// Theme is the game's free-text theme, e.g. "haunted lighthouse".
	Theme string

	// Difficulty is the target difficulty in [0.1, 2.0].
	Difficulty float64

	AgeGroup string

	// Context is an optional passage (storyline excerpt or retrieved
	// text) the puzzle should draw on.
	Context string

	// PriorQuestions are questions already asked in this game.
	PriorQuestions []string
}

// Content is the generated puzzle text.
type Content struct {
	Question string
	Answer   string
	Hint     string
}

// Complete reports whether the content carries both a question and an
// answer. A missing hint is allowed.
func (c *Content) Complete() bool {
	return c != nil && c.Question != "" && c.Answer != ""
}

// Fallback returns the deterministic content used when generation fails.
func Fallback(theme string) Content {
	return Content{
		Question: "Default question for " + theme,
		Answer:   "Default answer",
		Hint:     "Default hint",
	}
}

// Result is the outcome of an Adapter call. Content is always usable.
type Result struct {
	Content Content
	Source  game.Source

	// Err is set when Source is game.SourceFallback.
	Err *GeneratorUnavailableError
}
