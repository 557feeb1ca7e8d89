package puzzlegen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/llm"
	"github.com/abhisek/escaperoom/internal/metrics"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonNoGenerator = "no_generator"
	ReasonError       = "error"
	ReasonTimeout     = "timeout"
	ReasonIncomplete  = "incomplete"
)

// errIncomplete is the cause recorded when the generator answered
// without a question or an answer.
var errIncomplete = errors.New("generated content is missing question or answer")

// GeneratorUnavailableError reports why the Adapter served fallback content.
type GeneratorUnavailableError struct {
	Reason string
	Err    error
}

func (e *GeneratorUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("puzzle generator unavailable (%s)", e.Reason)
	}
	return fmt.Sprintf("puzzle generator unavailable (%s): %v", e.Reason, e.Err)
}

func (e *GeneratorUnavailableError) Unwrap() error { return e.Err }

// Adapter wraps a Generator and never fails: any generator problem is
// turned into fallback content plus an explicit soft error.
type Adapter struct {
	gen     Generator
	timeout time.Duration
	logger  zerolog.Logger
}

// NewAdapter creates an Adapter. gen may be nil, in which case every
// call serves fallback content. A non-positive timeout uses the default.
func NewAdapter(gen Generator, timeout time.Duration, logger zerolog.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	return &Adapter{
		gen:     gen,
		timeout: timeout,
		logger:  logger.With().Str("component", "puzzlegen").Logger(),
	}
}

// Generate produces puzzle content for input. The result always holds
// usable content.
func (a *Adapter) Generate(ctx context.Context, input Input) Result {
	if a.gen == nil {
		return a.fallback(input, &GeneratorUnavailableError{Reason: ReasonNoGenerator})
	}

	genCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	content, err := a.gen.Generate(genCtx, input)
	switch {
	case err != nil && (llm.IsTimeout(err) || genCtx.Err() != nil):
		return a.fallback(input, &GeneratorUnavailableError{Reason: ReasonTimeout, Err: err})
	case err != nil:
		return a.fallback(input, &GeneratorUnavailableError{Reason: ReasonError, Err: err})
	case !content.Complete():
		return a.fallback(input, &GeneratorUnavailableError{Reason: ReasonIncomplete, Err: errIncomplete})
	}

	metrics.PuzzlesGenerated.WithLabelValues(string(game.SourceLLM)).Inc()
	return Result{Content: *content, Source: game.SourceLLM}
}

func (a *Adapter) fallback(input Input, uerr *GeneratorUnavailableError) Result {
	a.logger.Warn().
		Err(uerr.Err).
		Str("reason", uerr.Reason).
		Str("theme", input.Theme).
		Float64("difficulty", input.Difficulty).
		Msg("serving fallback puzzle")

	metrics.GeneratorFallbacks.WithLabelValues(uerr.Reason).Inc()
	metrics.PuzzlesGenerated.WithLabelValues(string(game.SourceFallback)).Inc()

	return Result{
		Content: Fallback(input.Theme),
		Source:  game.SourceFallback,
		Err:     uerr,
	}
}
