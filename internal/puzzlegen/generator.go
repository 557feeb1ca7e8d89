package puzzlegen

import "context"

// Generator produces escape room puzzle content.
type Generator interface {
	// Generate produces a single puzzle for the given input.
	// Implementations may return partial content; the Adapter decides
	// whether it is usable.
	Generate(ctx context.Context, input Input) (*Content, error)
}
