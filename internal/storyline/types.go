package storyline

import "fmt"

// Brief is what the composer is asked to build a story around.
type Brief struct {
	Theme      string
	AgeGroup   string
	Difficulty int
}

// Story is the composed narrative and the puzzle ideas that go with it.
type Story struct {
	Storyline   string
	PuzzleIdeas []string
}

// Result is the explicit outcome of Compose. Story is the zero value
// when Err is set.
type Result struct {
	Story Story
	Err   *UnavailableError
}

// UnavailableError is the soft failure reported by Compose.
type UnavailableError struct {
	// Role is the role that failed, empty when no provider is configured.
	Role Role
	Err  error
}

func (e *UnavailableError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("storyline unavailable: %v", e.Err)
	}
	return fmt.Sprintf("storyline unavailable at %s: %v", e.Role, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
