package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/escaperoom/internal/config"
	"github.com/abhisek/escaperoom/internal/logging"
	"github.com/abhisek/escaperoom/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "escaperoom",
	Short: "Adaptive escape room game server",
	Long: "escaperoom runs an escape room backend whose puzzles are written by an LLM " +
		"and get harder or easier as the player solves them.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file (default ./config.yaml if present)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides ESCAPEROOM_DB)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config and applies --db.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = p
	}
	return cfg, nil
}

// openStore connects to the configured database. An empty SQLite DSN
// resolves to the default per-user path.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" && dsn == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		dsn = p
	}
	st, err := store.OpenDriver(ctx, cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newLogger builds the process logger. Interactive commands log to the
// configured file only so the terminal stays clean.
func newLogger(cfg *config.Config, interactive bool) (zerolog.Logger, func(), error) {
	build := logging.New
	if interactive {
		build = logging.NewFileOnly
	}
	logger, closer, err := build(cfg.Log)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf("init logging: %w", err)
	}
	return logger, func() { _ = closer.Close() }, nil
}
