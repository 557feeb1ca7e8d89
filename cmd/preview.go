package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/difficulty"
	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/puzzlegen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview generated puzzles for a theme (no database)",
	Long: `Generate and interactively answer puzzles for a theme.

This is a stateless developer tool: nothing is stored and no LLM events
are recorded. Useful for judging prompt quality.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("theme", "", "Room theme (required)")
	previewCmd.Flags().Float64("difficulty", game.DefaultDifficulty, "Puzzle difficulty (0.1-2.0)")
	previewCmd.Flags().String("age-group", "adults", "Target age group")
	previewCmd.Flags().Int("count", 3, "Number of puzzles to generate")
	_ = previewCmd.MarkFlagRequired("theme")
}

func runPreview(cmd *cobra.Command, args []string) error {
	theme, _ := cmd.Flags().GetString("theme")
	diff, _ := cmd.Flags().GetFloat64("difficulty")
	ageGroup, _ := cmd.Flags().GetString("age-group")
	count, _ := cmd.Flags().GetInt("count")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	provider := newProvider(ctx, cfg, nil, logger)
	if provider == nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; showing fallback puzzles.")
	}
	adapter := newPuzzleAdapter(cfg, provider, logger)
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Printf("Theme: %s (difficulty %.1f, %s)\n", theme, diff, ageGroup)
	fmt.Printf("Generating %d puzzles...\n\n", count)

	var solved int
	var prior []string
	for i := 1; i <= count; i++ {
		res := adapter.Generate(ctx, puzzlegen.Input{
			Theme:          theme,
			Difficulty:     difficulty.Clamp(diff),
			AgeGroup:       ageGroup,
			PriorQuestions: prior,
		})
		if res.Err != nil {
			fmt.Printf("(generator unavailable: %v)\n", res.Err)
		}
		prior = append(prior, res.Content.Question)

		p := &game.Puzzle{
			Question:   res.Content.Question,
			Answer:     res.Content.Answer,
			Hint:       res.Content.Hint,
			Difficulty: difficulty.Clamp(diff),
			Source:     res.Source,
		}

		fmt.Printf("── Puzzle %d/%d [%s] ──\n", i, count, res.Source)
		fmt.Println(p.Question)

		for !p.Solved {
			fmt.Print("\nYour answer (? for hint, empty to skip): ")
			if !scanner.Scan() {
				fmt.Println("\n(input closed)")
				return summarizePreview(solved, count)
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				fmt.Printf("Skipped. Answer: %s\n", p.Answer)
				break
			}
			if text == "?" {
				fmt.Println("Hint:", p.Hint)
				continue
			}
			r := answer.Evaluate(p, text)
			switch r.Tier {
			case answer.TierCorrect:
				solved++
				fmt.Printf("\033[32m✓ %s\033[0m (attempts %d, next difficulty %.2f)\n", r.Feedback, p.Attempts, p.Difficulty)
			case answer.TierClose:
				fmt.Printf("\033[33m%s\033[0m\n", r.Feedback)
			default:
				fmt.Printf("\033[31m%s\033[0m\n", r.Feedback)
			}
		}
		fmt.Println()
	}

	return summarizePreview(solved, count)
}

func summarizePreview(solved, count int) error {
	fmt.Printf("── Summary: %d/%d solved ──\n", solved, count)
	return nil
}
