package storyline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/llm"
)

func brief() Brief {
	return Brief{Theme: "sunken submarine", AgeGroup: "adult", Difficulty: 2}
}

func TestCompose_ThreeRoles(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.TextResponse("The USS Marlin rests on the sea floor."),
		llm.TextResponse("1. Decode the sonar pings\n2. Balance the ballast tanks"),
		llm.MockResponse{Content: []byte(`{
			"storyline": "  The USS Marlin rests on the sea floor. Air is running out.  ",
			"puzzle_ideas": ["Decode the sonar pings", " ", "Balance the ballast tanks"]
		}`)},
	)
	c := New(mock, DefaultConfig(), zerolog.Nop())

	res := c.Compose(context.Background(), brief())
	require.Nil(t, res.Err)
	assert.Equal(t, "The USS Marlin rests on the sea floor. Air is running out.", res.Story.Storyline)
	assert.Equal(t, []string{"Decode the sonar pings", "Balance the ballast tanks"}, res.Story.PuzzleIdeas)

	require.Equal(t, 3, mock.CallCount())
	calls := mock.Calls
	assert.Contains(t, calls[0].Messages[0].Content, "theme: sunken submarine")
	assert.Nil(t, calls[0].Schema)
	assert.Contains(t, calls[1].Messages[0].Content, "USS Marlin")
	assert.Contains(t, calls[1].Messages[0].Content, "age group: adult")
	assert.Contains(t, calls[2].Messages[0].Content, "Decode the sonar pings")
	assert.Contains(t, calls[2].Messages[0].Content, "level 2 for age group adult")
	assert.Equal(t, StorySchema, calls[2].Schema)
}

func TestCompose_RoleFailure(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.TextResponse("A story."),
		llm.MockResponse{Err: errors.New("overloaded")},
	)
	res := New(mock, DefaultConfig(), zerolog.Nop()).Compose(context.Background(), brief())

	require.NotNil(t, res.Err)
	assert.Equal(t, RolePuzzleMaster, res.Err.Role)
	assert.ErrorContains(t, res.Err, "overloaded")
	assert.Empty(t, res.Story.Storyline)
}

func TestCompose_SchemaViolation(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.TextResponse("A story."),
		llm.TextResponse("1. idea"),
		llm.MockResponse{Content: []byte(`{"storyline": "x"}`)},
	)
	res := New(mock, DefaultConfig(), zerolog.Nop()).Compose(context.Background(), brief())

	require.NotNil(t, res.Err)
	assert.Equal(t, RoleDifficultyScaler, res.Err.Role)
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, res.Err, &invalid)
}

func TestCompose_EmptyCompletion(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("   "))
	res := New(mock, DefaultConfig(), zerolog.Nop()).Compose(context.Background(), brief())
	require.NotNil(t, res.Err)
	assert.Equal(t, RoleStoryteller, res.Err.Role)
}

func TestCompose_NoProvider(t *testing.T) {
	res := New(nil, DefaultConfig(), zerolog.Nop()).Compose(context.Background(), brief())
	require.NotNil(t, res.Err)
	assert.ErrorIs(t, res.Err, errNoProvider)
}

func TestCleanIdeas_Caps(t *testing.T) {
	got := cleanIdeas([]string{"a", "", "b", "c"}, 2)
	assert.Equal(t, []string{"a", "b"}, got)
}
