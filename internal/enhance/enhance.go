// Package enhance retrieves passages related to a theme or storyline
// from loaded text sources, to ground generated puzzles.
package enhance

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/abhisek/escaperoom/internal/metrics"
)

// DefaultK is the number of passages returned when k is not positive.
const DefaultK = 4

// Config controls chunking.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig returns the default chunking parameters.
func DefaultConfig() Config {
	return Config{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// Enhancement is the explicit result of Enhance.
type Enhancement struct {
	Passages []string

	// Err is set when enhancement failed; Passages is then empty.
	Err *UnavailableError
}

type index struct {
	chunks  []string
	vectors [][]float32
}

// Enhancer holds one vector index per loaded source. It is safe for
// concurrent use.
type Enhancer struct {
	embedder Embedder
	fetcher  Fetcher
	config   Config
	logger   zerolog.Logger

	mu      sync.RWMutex
	indexes map[string]*index
}

// New creates an Enhancer.
func New(embedder Embedder, fetcher Fetcher, cfg Config, logger zerolog.Logger) *Enhancer {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &Enhancer{
		embedder: embedder,
		fetcher:  fetcher,
		config:   cfg,
		logger:   logger.With().Str("component", "enhance").Logger(),
		indexes:  make(map[string]*index),
	}
}

// Load fetches, chunks and embeds source, replacing any previous index
// for it.
func (e *Enhancer) Load(ctx context.Context, source string) error {
	raw, err := e.fetcher.Fetch(ctx, source)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", source, err)
	}
	chunks := SplitText(string(raw), e.config.ChunkSize, e.config.ChunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("source %s is empty", source)
	}
	vectors, err := e.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed %s: %w", source, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embed %s: got %d vectors for %d chunks", source, len(vectors), len(chunks))
	}

	e.mu.Lock()
	e.indexes[source] = &index{chunks: chunks, vectors: vectors}
	e.mu.Unlock()

	e.logger.Info().Str("source", source).Int("chunks", len(chunks)).Msg("enhancement source loaded")
	return nil
}

// Loaded reports whether source has an index.
func (e *Enhancer) Loaded(source string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.indexes[source]
	return ok
}

// Sources returns the loaded source names in sorted order.
func (e *Enhancer) Sources() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.indexes))
	for s := range e.indexes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Reload re-fetches every loaded source. A source that fails keeps its
// previous index. The first error is returned after all sources were
// attempted.
func (e *Enhancer) Reload(ctx context.Context) error {
	var first error
	for _, s := range e.Sources() {
		if err := e.Load(ctx, s); err != nil {
			e.logger.Warn().Err(err).Str("source", s).Msg("enhancement reload failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Query returns up to k passages most similar to text across all loaded
// sources. Failures are logged and yield an empty slice.
func (e *Enhancer) Query(ctx context.Context, text string, k int) []string {
	passages, err := e.search(ctx, e.Sources(), text, k)
	if err != nil {
		e.logger.Warn().Err(err).Msg("enhancement query failed")
		return []string{}
	}
	return passages
}

// Enhance loads source when needed and returns up to k passages from it
// that are similar to text. It never fails; problems are reported in
// Enhancement.Err.
func (e *Enhancer) Enhance(ctx context.Context, source, text string, k int) Enhancement {
	if source == "" {
		return e.soft("query", source, ErrNotLoaded)
	}
	if !e.Loaded(source) {
		if err := e.Load(ctx, source); err != nil {
			return e.soft("load", source, err)
		}
	}
	passages, err := e.search(ctx, []string{source}, text, k)
	if err != nil {
		return e.soft("query", source, err)
	}
	return Enhancement{Passages: passages}
}

func (e *Enhancer) soft(op, source string, err error) Enhancement {
	uerr := &UnavailableError{Op: op, Source: source, Err: err}
	e.logger.Warn().Err(err).Str("op", op).Str("source", source).Msg("enhancement unavailable")
	metrics.SoftFailures.WithLabelValues("enhance").Inc()
	return Enhancement{Passages: []string{}, Err: uerr}
}

type scored struct {
	text  string
	score float64
}

func (e *Enhancer) search(ctx context.Context, sources []string, text string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultK
	}

	e.mu.RLock()
	idx := make([]*index, 0, len(sources))
	for _, s := range sources {
		if ix, ok := e.indexes[s]; ok {
			idx = append(idx, ix)
		}
	}
	e.mu.RUnlock()
	if len(idx) == 0 {
		return nil, ErrNotLoaded
	}

	qv, err := e.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(qv))
	}

	var all []scored
	for _, ix := range idx {
		for i, v := range ix.vectors {
			all = append(all, scored{text: ix.chunks[i], score: cosine(qv[0], v)})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score > all[j].score })

	if len(all) > k {
		all = all[:k]
	}
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = s.text
	}
	return out, nil
}
