package storyline

import "github.com/abhisek/escaperoom/internal/llm"

// StorySchema defines the JSON schema for the difficulty scaler's reply.
var StorySchema = &llm.Schema{
	Name:        "escape-room-storyline",
	Description: "An escape room storyline with difficulty-adjusted puzzle ideas",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"storyline": map[string]any{
				"type":        "string",
				"description": "The storyline the players read when the game starts",
			},
			"puzzle_ideas": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "One short description per puzzle, adjusted to the requested difficulty",
			},
		},
		"required":             []any{"storyline", "puzzle_ideas"},
		"additionalProperties": false,
	},
}
