package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/escaperoom/internal/app"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal against the local database",
	Long: `Start the terminal client. It uses the same database and LLM settings as
serve but talks to the game service directly, no server needed.

Without --user a new player is created first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
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

		d, err := buildDeps(ctx, cfg, st, logger)
		if err != nil {
			return err
		}

		userID, _ := cmd.Flags().GetInt64("user")
		noSplash, _ := cmd.Flags().GetBool("no-splash")
		return app.Run(ctx, app.Options{
			Games:      d.Service,
			UserID:     userID,
			SkipSplash: noSplash,
		})
	},
}

func init() {
	playCmd.Flags().Int64("user", 0, "Existing player id")
	playCmd.Flags().Bool("no-splash", false, "Skip the title animation")
}
