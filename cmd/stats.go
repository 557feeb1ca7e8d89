package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/escaperoom/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats <game-id>",
	Short: "Show a game's puzzles and difficulty progression",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid game id %q: %w", args[0], err)
		}

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
		st, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		// Stats never generate, so the service runs without a provider.
		svc := service.New(st, newPuzzleAdapter(cfg, nil, logger), cfg.Service(), logger)

		stats, err := svc.GameStats(ctx, id)
		if err != nil {
			return fmt.Errorf("game %d: %w", id, err)
		}
		puzzles, err := svc.ListPuzzles(ctx, id)
		if err != nil {
			return fmt.Errorf("game %d puzzles: %w", id, err)
		}

		g := stats.Game
		status := "open"
		if g.Finished() {
			status = "finished " + g.EndTime.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("Game %d: %s (%s, base difficulty %d)\n", g.ID, g.Theme, g.AgeGroup, g.Difficulty)
		fmt.Printf("Started:   %s, %s\n", g.StartTime.Local().Format("2006-01-02 15:04"), status)
		fmt.Printf("Score:     %d\n", g.Score)
		fmt.Printf("Solved:    %d/%d (%d fallback)\n", stats.Solved, stats.Total, stats.Fallbacks)
		fmt.Printf("Averages:  difficulty %.2f, attempts %.2f, time %.1fs (solved puzzles)\n",
			stats.Session.AvgDifficulty, stats.Session.AvgAttempts, stats.Session.AvgTime)
		fmt.Printf("Next:      %.2f\n", stats.NextDifficulty)

		if len(puzzles) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Printf("%-5s  %-6s  %-8s  %-8s  %-8s  %-9s  %s\n",
			"ID", "Solved", "Diff", "Attempts", "Time", "Source", "Question")
		fmt.Println(strings.Repeat("─", 100))
		for _, p := range puzzles {
			solved := " "
			if p.Solved {
				solved = "✓"
			}
			fmt.Printf("%-5d  %-6s  %-8.2f  %-8d  %-8s  %-9s  %s\n",
				p.ID, solved, p.Difficulty, p.Attempts,
				(time.Duration(p.TimeSpent * float64(time.Second))).Round(time.Second),
				p.Source, truncate(strings.ReplaceAll(p.Question, "\n", " "), 48))
		}
		return nil
	},
}
