package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", resolveModel("gemini-flash", geminiModels))
	assert.Equal(t, "gemini-2.5-pro", resolveModel("gemini-pro", geminiModels))
	assert.Equal(t, "gemini-2.0-flash", resolveModel("gemini-2.0-flash", geminiModels))
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"storyline": map[string]any{"type": "string"},
			"mood":      map[string]any{"type": "string", "enum": []any{"eerie", "playful"}},
			"puzzle_ideas": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"storyline", "puzzle_ideas"},
	}

	schema := buildGeminiSchema(def)

	assert.Equal(t, genai.TypeObject, schema.Type)
	require.Len(t, schema.Properties, 3)
	assert.Equal(t, genai.TypeString, schema.Properties["storyline"].Type)
	assert.Len(t, schema.Properties["mood"].Enum, 2)
	assert.Equal(t, genai.TypeArray, schema.Properties["puzzle_ideas"].Type)
	assert.Equal(t, genai.TypeString, schema.Properties["puzzle_ideas"].Items.Type)
	assert.Equal(t, []string{"storyline", "puzzle_ideas"}, schema.Required)
}

func TestMapGeminiError(t *testing.T) {
	apiErr := func(code int) error {
		return fmt.Errorf("generate: %w", genai.APIError{Code: code, Message: "boom"})
	}

	var rl *ErrRateLimit
	assert.True(t, errors.As(mapGeminiError(apiErr(http.StatusTooManyRequests)), &rl))

	var bad *ErrBadRequest
	require.True(t, errors.As(mapGeminiError(apiErr(http.StatusBadRequest)), &bad))
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
	assert.True(t, errors.As(mapGeminiError(apiErr(http.StatusNotFound)), &bad))

	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(mapGeminiError(apiErr(http.StatusServiceUnavailable)), &unavail))
	assert.True(t, errors.As(mapGeminiError(errors.New("connection reset")), &unavail))
}
