// Package storyline composes the narrative of a new escape room with a
// three-role LLM pipeline: storyteller, puzzle master and difficulty
// scaler. Each role sees the previous role's output.
package storyline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/abhisek/escaperoom/internal/llm"
	"github.com/abhisek/escaperoom/internal/metrics"
)

var errNoProvider = errors.New("no LLM provider configured")

// Config holds composition settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// MaxIdeas caps the puzzle ideas kept from the final role.
	MaxIdeas int
}

// DefaultConfig returns sensible defaults for composition.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   700,
		Temperature: 0.8,
		MaxIdeas:    8,
	}
}

// Composer runs the role pipeline against an LLM provider.
type Composer struct {
	provider llm.Provider
	cfg      Config
	logger   zerolog.Logger
}

// New creates a Composer. provider may be nil, in which case Compose
// always reports a soft failure.
func New(provider llm.Provider, cfg Config, logger zerolog.Logger) *Composer {
	return &Composer{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "storyline").Logger(),
	}
}

type storyOutput struct {
	Storyline   string   `json:"storyline"`
	PuzzleIdeas []string `json:"puzzle_ideas"`
}

// Compose runs the three roles in order. It never fails; problems are
// reported in Result.Err.
func (c *Composer) Compose(ctx context.Context, brief Brief) Result {
	if c.provider == nil {
		return c.soft(brief, &UnavailableError{Err: errNoProvider})
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeStoryline)

	story, err := c.ask(ctx, storytellerPrompt, storytellerTask(brief), nil)
	if err != nil {
		return c.soft(brief, &UnavailableError{Role: RoleStoryteller, Err: err})
	}

	ideas, err := c.ask(ctx, puzzleMasterPrompt, puzzleMasterTask(brief, story.Text()), nil)
	if err != nil {
		return c.soft(brief, &UnavailableError{Role: RolePuzzleMaster, Err: err})
	}

	final, err := c.ask(ctx, difficultyScalerPrompt,
		difficultyScalerTask(brief, story.Text(), ideas.Text()), StorySchema)
	if err != nil {
		return c.soft(brief, &UnavailableError{Role: RoleDifficultyScaler, Err: err})
	}

	var out storyOutput
	if err := json.Unmarshal(final.Content, &out); err != nil {
		return c.soft(brief, &UnavailableError{Role: RoleDifficultyScaler, Err: fmt.Errorf("parse storyline response: %w", err)})
	}

	return Result{Story: Story{
		Storyline:   strings.TrimSpace(out.Storyline),
		PuzzleIdeas: cleanIdeas(out.PuzzleIdeas, c.cfg.MaxIdeas),
	}}
}

func (c *Composer) ask(ctx context.Context, system, task string, schema *llm.Schema) (*llm.Response, error) {
	resp, err := c.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: task}},
		Schema:      schema,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if schema != nil {
		if err := llm.ValidateContent(schema, resp.Content); err != nil {
			return nil, err
		}
	} else if strings.TrimSpace(resp.Text()) == "" {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty completion")}
	}
	return resp, nil
}

func (c *Composer) soft(brief Brief, uerr *UnavailableError) Result {
	c.logger.Warn().Err(uerr.Err).Str("role", string(uerr.Role)).Str("theme", brief.Theme).
		Msg("storyline unavailable, continuing without one")
	metrics.SoftFailures.WithLabelValues("storyline").Inc()
	return Result{Err: uerr}
}

func cleanIdeas(ideas []string, max int) []string {
	out := make([]string, 0, len(ideas))
	for _, idea := range ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			out = append(out, idea)
		}
	}
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
