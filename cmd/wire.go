package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/abhisek/escaperoom/internal/config"
	"github.com/abhisek/escaperoom/internal/enhance"
	"github.com/abhisek/escaperoom/internal/llm"
	"github.com/abhisek/escaperoom/internal/puzzlegen"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/storyline"
	"github.com/abhisek/escaperoom/internal/store"
)

// deps are the long-lived components shared by serve and play.
type deps struct {
	Provider llm.Provider
	Enhancer *enhance.Enhancer
	Service  *service.GameService
}

// newProvider builds the LLM provider. A missing key is not fatal: the
// game runs on fallback puzzles and the error is logged.
func newProvider(ctx context.Context, cfg *config.Config, recorder llm.EventRecorder, logger zerolog.Logger) llm.Provider {
	p, err := llm.NewProvider(ctx, cfg.LLM, recorder, logger)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.LLM.Provider).
			Msg("LLM provider not configured, puzzles will use fallback content")
		return nil
	}
	return p
}

// newEmbedder picks the enhancement embedder. "auto" uses OpenAI
// embeddings when an OpenAI key is configured and the offline hash
// embedder otherwise.
func newEmbedder(cfg *config.Config) (enhance.Embedder, error) {
	useOpenAI := false
	switch cfg.Enhance.Embedder {
	case config.EmbedderOpenAI:
		if cfg.LLM.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("enhance.embedder=openai needs llm.openai.api_key")
		}
		useOpenAI = true
	case config.EmbedderAuto:
		useOpenAI = cfg.LLM.OpenAI.APIKey != ""
	}
	if !useOpenAI {
		return enhance.HashEmbedder{}, nil
	}

	oc := openai.DefaultConfig(cfg.LLM.OpenAI.APIKey)
	if cfg.LLM.OpenAI.BaseURL != "" {
		oc.BaseURL = cfg.LLM.OpenAI.BaseURL
	}
	return enhance.NewOpenAIEmbedder(openai.NewClientWithConfig(oc), cfg.Enhance.EmbeddingModel), nil
}

// newEnhancer returns nil when no enhancement source is configured.
func newEnhancer(cfg *config.Config, logger zerolog.Logger) (*enhance.Enhancer, error) {
	if cfg.Enhance.Source == "" {
		return nil, nil
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	objects, err := enhance.NewObjectStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	ecfg := enhance.Config{ChunkSize: cfg.Enhance.ChunkSize, ChunkOverlap: cfg.Enhance.ChunkOverlap}
	return enhance.New(embedder, enhance.NewSourceFetcher(objects), ecfg, logger), nil
}

// newPuzzleAdapter wires the generator used for every puzzle. A nil
// provider yields an adapter that always falls back.
func newPuzzleAdapter(cfg *config.Config, provider llm.Provider, logger zerolog.Logger) *puzzlegen.Adapter {
	var gen puzzlegen.Generator
	if provider != nil {
		pcfg := puzzlegen.DefaultConfig()
		pcfg.MaxTokens = cfg.LLM.MaxTokens
		pcfg.Temperature = cfg.LLM.Temperature
		pcfg.Timeout = cfg.Game.PuzzleTimeout
		gen = puzzlegen.New(provider, pcfg)
	}
	return puzzlegen.NewAdapter(gen, cfg.Game.PuzzleTimeout, logger)
}

// buildDeps assembles the game service on top of st.
func buildDeps(ctx context.Context, cfg *config.Config, st *store.Store, logger zerolog.Logger) (*deps, error) {
	provider := newProvider(ctx, cfg, st.LLMEvents(), logger)

	enhancer, err := newEnhancer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init enhancement: %w", err)
	}

	var opts []service.Option
	if provider != nil && cfg.Game.Storyline {
		opts = append(opts, service.WithComposer(storyline.New(provider, storyline.DefaultConfig(), logger)))
	}
	if enhancer != nil {
		opts = append(opts, service.WithEnhancer(enhancer))
	}

	svc := service.New(st, newPuzzleAdapter(cfg, provider, logger), cfg.Service(), logger, opts...)
	return &deps{Provider: provider, Enhancer: enhancer, Service: svc}, nil
}
