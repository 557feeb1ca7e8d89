package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/store"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		TextResponse("second"),
	)

	resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, resp.Text())
	assert.Equal(t, 10, resp.Usage.InputTokens)
	assert.Equal(t, "end", resp.StopReason)

	resp, err = mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Text())

	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, "second", mock.LastCall().Messages[0].Content)
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))
}

func TestMockProvider_DelayHonorsContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`late`), Delay: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := mock.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeout(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`late`), Delay: time.Hour})
	p := WithTimeout(mock, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	assert.True(t, IsTimeout(err))

	assert.Same(t, mock, WithTimeout(mock, 0))
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, PurposePuzzle, PurposeFrom(WithPurpose(ctx, PurposePuzzle)))
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []store.LLMEvent
	err    error
}

func (f *fakeRecorder) Append(_ context.Context, ev store.LLMEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	rec := &fakeRecorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`ok`), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		unavailable(),
	)
	p := WithLogging(mock, rec, zerolog.Nop())
	ctx := WithPurpose(context.Background(), PurposeStoryline)

	_, err := p.Generate(ctx, Request{})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, rec.events, 2)
	ok, failed := rec.events[0], rec.events[1]

	assert.True(t, ok.Success)
	assert.Equal(t, PurposeStoryline, ok.Purpose)
	assert.Equal(t, 12, ok.InputTokens)
	assert.Equal(t, "mock", ok.Model)
	assert.NotEmpty(t, ok.RequestID)

	assert.False(t, failed.Success)
	assert.NotEmpty(t, failed.ErrorMessage)
	assert.NotEqual(t, ok.RequestID, failed.RequestID)
}

func TestLoggingProvider_RecorderFailureIgnored(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(TextResponse("ok")), rec, zerolog.Nop())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())

	_, err = NewProvider(context.Background(), Config{Provider: ProviderOpenAI}, nil, zerolog.Nop())
	assert.Error(t, err, "missing key")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "sk"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk"}}, false},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
			assert.Equal(t, !tt.wantErr, tt.cfg.HasKey())
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ESCAPEROOM_LLM_PROVIDER", "openrouter")
	t.Setenv("ESCAPEROOM_OPENROUTER_API_KEY", "sk-or")
	t.Setenv("ESCAPEROOM_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, "sk-or", cfg.OpenRouter.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestEstimateCost(t *testing.T) {
	assert.InDelta(t, 0.75, EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, EstimateCost("mystery-model", 100, 100))
}
