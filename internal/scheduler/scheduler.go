// Package scheduler runs periodic maintenance: pruning the LLM request
// log and reloading enhancement sources.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// Config controls the maintenance jobs. A non-positive interval disables
// the corresponding job.
type Config struct {
	Enabled        bool          `mapstructure:"enabled"`
	PruneInterval  time.Duration `mapstructure:"prune_interval"`
	EventRetention time.Duration `mapstructure:"event_retention"`
	ReloadInterval time.Duration `mapstructure:"reload_interval"`
}

// DefaultConfig prunes hourly, keeps 30 days of LLM events and reloads
// enhancement sources every 6 hours.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		PruneInterval:  time.Hour,
		EventRetention: 30 * 24 * time.Hour,
		ReloadInterval: 6 * time.Hour,
	}
}

// EventPruner deletes LLM request events older than cutoff.
type EventPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// Reloader refreshes loaded enhancement sources.
type Reloader interface {
	Reload(ctx context.Context) error
}

// jobTimeout bounds a single job run.
const jobTimeout = 5 * time.Minute

// Scheduler wraps a gocron scheduler with the maintenance jobs.
type Scheduler struct {
	sched    gocron.Scheduler
	cfg      Config
	pruner   EventPruner
	reloader Reloader
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a Scheduler and registers the configured jobs. pruner and
// reloader may be nil to skip their job.
func New(cfg Config, pruner EventPruner, reloader Reloader, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		sched:    sched,
		cfg:      cfg,
		pruner:   pruner,
		reloader: reloader,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}

	if pruner != nil && cfg.PruneInterval > 0 && cfg.EventRetention > 0 {
		_, err := sched.NewJob(
			gocron.DurationJob(cfg.PruneInterval),
			gocron.NewTask(s.runPrune),
			gocron.WithName("prune-llm-events"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return nil, fmt.Errorf("register prune job: %w", err)
		}
	}

	if reloader != nil && cfg.ReloadInterval > 0 {
		_, err := sched.NewJob(
			gocron.DurationJob(cfg.ReloadInterval),
			gocron.NewTask(s.runReload),
			gocron.WithName("reload-enhancement-sources"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return nil, fmt.Errorf("register reload job: %w", err)
		}
	}

	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.logger.Info().Int("jobs", len(s.sched.Jobs())).Msg("scheduler started")
	s.sched.Start()
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

// JobNames returns the names of the registered jobs.
func (s *Scheduler) JobNames() []string {
	jobs := s.sched.Jobs()
	names := make([]string, 0, len(jobs))
	for _, j := range jobs {
		names = append(names, j.Name())
	}
	return names
}

func (s *Scheduler) runPrune() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.Prune(ctx); err != nil {
		s.logger.Error().Err(err).Msg("prune LLM events failed")
	}
}

// Prune deletes LLM events older than the retention window.
func (s *Scheduler) Prune(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.cfg.EventRetention)
	n, err := s.pruner.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("pruned LLM events")
	}
	return n, nil
}

func (s *Scheduler) runReload() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := s.reloader.Reload(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("reload enhancement sources failed")
		return
	}
	s.logger.Debug().Msg("enhancement sources reloaded")
}
