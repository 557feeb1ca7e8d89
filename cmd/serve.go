package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/escaperoom/internal/httpapi"
	"github.com/abhisek/escaperoom/internal/metrics"
	"github.com/abhisek/escaperoom/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	d, err := buildDeps(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	metrics.Init()

	if cfg.Scheduler.Enabled {
		var reloader scheduler.Reloader
		if d.Enhancer != nil {
			reloader = d.Enhancer
		}
		sched, err := scheduler.New(cfg.Scheduler, st.LLMEvents(), reloader, logger)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				logger.Warn().Err(err).Msg("scheduler shutdown")
			}
		}()
	}

	srv := httpapi.New(d.Service, st, cfg.Server, logger)
	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("llm_provider", cfg.LLM.Provider).
		Bool("llm_ready", d.Provider != nil).
		Bool("enhancement", d.Enhancer != nil).
		Msg("starting server")

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
