package puzzlegen

import (
	"context"
	"fmt"

	"github.com/abhisek/escaperoom/internal/llm"
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// Generate asks the provider for a plain-text puzzle and parses it.
// The returned content may be incomplete.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) (*Content, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposePuzzle)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	content := ParseContent(resp.Text())
	return &content, nil
}
