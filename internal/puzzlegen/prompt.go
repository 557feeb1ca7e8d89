package puzzlegen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a creative puzzle designer for an escape room game.

Rules:
- Write exactly one puzzle that fits the theme and the age group.
- The answer must be a single word or short phrase the player can type.
- Scale the puzzle to the difficulty: 0.1 is trivial, 2.0 is very hard.
- Do not repeat any question from the "already asked" list.
- Reply with exactly three lines and nothing else:
Question: <the puzzle>
Answer: <the answer>
Hint: <a hint that does not give the answer away>`

// buildUserMessage constructs the user message from Input and Config limits.
func buildUserMessage(input Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a puzzle with theme '%s', difficulty %.1f/2.0, for %s age group. ",
		input.Theme, input.Difficulty, ageGroupOrDefault(input.AgeGroup))
	b.WriteString("Include a question, answer, and hint.\n")

	if passage := truncate(strings.TrimSpace(input.Context), cfg.MaxContextChars); passage != "" {
		b.WriteString("\nBase the puzzle on this passage:\n")
		b.WriteString(passage)
		b.WriteString("\n")
	}

	b.WriteString("\nAlready asked in this game:\n")
	b.WriteString(buildDedup(input.PriorQuestions, cfg.MaxPriorQuestions))

	return b.String()
}

func ageGroupOrDefault(g string) string {
	if strings.TrimSpace(g) == "" {
		return "any"
	}
	return g
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(priorQuestions []string, max int) string {
	if len(priorQuestions) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(priorQuestions) > max {
		priorQuestions = priorQuestions[len(priorQuestions)-max:]
	}

	var b strings.Builder
	for i, q := range priorQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
