package puzzlegen

import "time"

// Config controls the behavior of the LLMGenerator and Adapter.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of prior questions
	// to include in the prompt for deduplication.
	MaxPriorQuestions int

	// MaxContextChars truncates the context passage in the prompt.
	MaxContextChars int

	// Timeout bounds one generation. The caller's deadline wins when it
	// is shorter.
	Timeout time.Duration
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         400,
		Temperature:       0.7,
		MaxPriorQuestions: 8,
		MaxContextChars:   1500,
		Timeout:           30 * time.Second,
	}
}
