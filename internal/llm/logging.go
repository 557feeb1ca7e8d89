package llm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abhisek/escaperoom/internal/store"
)

// EventRecorder persists LLM request events. *store.LLMEventRepo
// satisfies it.
type EventRecorder interface {
	Append(ctx context.Context, ev store.LLMEvent) error
}

// LoggingProvider is a decorator that records every LLM request as an
// event and writes a structured log line for it.
type LoggingProvider struct {
	inner    Provider
	recorder EventRecorder
	logger   zerolog.Logger
}

// WithLogging wraps a Provider with event logging. A nil recorder keeps
// the log line and skips persistence.
func WithLogging(p Provider, recorder EventRecorder, logger zerolog.Logger) Provider {
	return &LoggingProvider{inner: p, recorder: recorder, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMEvent{
		RequestID: uuid.NewString(),
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		CreatedAt: start.UTC(),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	entry := l.logger.Info()
	if err != nil {
		entry = l.logger.Warn().Err(err)
	}
	entry.
		Str("request_id", ev.RequestID).
		Str("model", ev.Model).
		Str("purpose", ev.Purpose).
		Int64("latency_ms", ev.LatencyMs).
		Int("input_tokens", ev.InputTokens).
		Int("output_tokens", ev.OutputTokens).
		Msg("llm request")

	// The event log is written outside any caller transaction and never
	// fails the request. A cancelled caller context must not drop it.
	if l.recorder != nil {
		if logErr := l.recorder.Append(context.WithoutCancel(ctx), ev); logErr != nil {
			l.logger.Warn().Err(logErr).Msg("failed to record LLM request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
