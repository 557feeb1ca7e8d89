// Package config loads the escaperoom configuration from defaults, an
// optional YAML file, a .env file and ESCAPEROOM_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/escaperoom/internal/enhance"
	"github.com/abhisek/escaperoom/internal/httpapi"
	"github.com/abhisek/escaperoom/internal/llm"
	"github.com/abhisek/escaperoom/internal/logging"
	"github.com/abhisek/escaperoom/internal/scheduler"
	"github.com/abhisek/escaperoom/internal/service"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "ESCAPEROOM"

// Embedder names accepted by EnhanceConfig.Embedder.
const (
	EmbedderAuto   = "auto"
	EmbedderOpenAI = "openai"
	EmbedderHash   = "hash"
)

type Config struct {
	Server    httpapi.Config            `mapstructure:"server"`
	Database  DatabaseConfig            `mapstructure:"database"`
	LLM       llm.Config                `mapstructure:"llm"`
	Enhance   EnhanceConfig             `mapstructure:"enhance"`
	Game      GameConfig                `mapstructure:"game"`
	Log       logging.Config            `mapstructure:"log"`
	Scheduler scheduler.Config          `mapstructure:"scheduler"`
	Storage   enhance.ObjectStoreConfig `mapstructure:"storage"`
}

type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver string `mapstructure:"driver"`

	// DSN is the driver-specific data source. Empty uses the default
	// SQLite file.
	DSN string `mapstructure:"dsn"`
}

type EnhanceConfig struct {
	// Source is a directory, URL prefix or s3://bucket/prefix holding one
	// <theme-slug>.txt per theme. Empty disables enhancement.
	Source         string `mapstructure:"source"`
	K              int    `mapstructure:"k"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
	Embedder       string `mapstructure:"embedder"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type GameConfig struct {
	InitialPuzzles int           `mapstructure:"initial_puzzles"`
	MinPasswordLen int           `mapstructure:"min_password_len"`
	PuzzleTimeout  time.Duration `mapstructure:"puzzle_timeout"`
	Storyline      bool          `mapstructure:"storyline"`
}

// Service returns the game-flow settings derived from the config.
func (c *Config) Service() service.Config {
	return service.Config{
		InitialPuzzles: c.Game.InitialPuzzles,
		EnhanceK:       c.Enhance.K,
		EnhanceSource:  c.Enhance.Source,
		MinPasswordLen: c.Game.MinPasswordLen,
	}
}

func setDefaults(v *viper.Viper) {
	srv := httpapi.DefaultConfig()
	v.SetDefault("server.addr", srv.Addr)
	v.SetDefault("server.request_timeout", srv.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", srv.ShutdownTimeout)
	v.SetDefault("server.allowed_origin", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")

	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.retry.max_attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.max_tokens", l.MaxTokens)
	v.SetDefault("llm.temperature", l.Temperature)

	e := enhance.DefaultConfig()
	v.SetDefault("enhance.source", "")
	v.SetDefault("enhance.k", enhance.DefaultK)
	v.SetDefault("enhance.chunk_size", e.ChunkSize)
	v.SetDefault("enhance.chunk_overlap", e.ChunkOverlap)
	v.SetDefault("enhance.embedder", EmbedderAuto)
	v.SetDefault("enhance.embedding_model", "")

	g := service.DefaultConfig()
	v.SetDefault("game.initial_puzzles", g.InitialPuzzles)
	v.SetDefault("game.min_password_len", g.MinPasswordLen)
	v.SetDefault("game.puzzle_timeout", 30*time.Second)
	v.SetDefault("game.storyline", true)

	lg := logging.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.pretty", lg.Pretty)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", lg.MaxSizeMB)
	v.SetDefault("log.max_backups", lg.MaxBackups)
	v.SetDefault("log.max_age_days", lg.MaxAgeDays)
	v.SetDefault("log.compress", lg.Compress)

	sc := scheduler.DefaultConfig()
	v.SetDefault("scheduler.enabled", sc.Enabled)
	v.SetDefault("scheduler.prune_interval", sc.PruneInterval)
	v.SetDefault("scheduler.event_retention", sc.EventRetention)
	v.SetDefault("scheduler.reload_interval", sc.ReloadInterval)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.region", "")
	v.SetDefault("storage.use_ssl", true)
}

// bindAliases maps the short variable names used by the LLM layer and
// the vendors' own key variables onto config keys. The first variable
// set wins.
func bindAliases(v *viper.Viper) error {
	aliases := map[string][]string{
		"llm.anthropic.api_key":  {"ESCAPEROOM_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
		"llm.anthropic.model":    {"ESCAPEROOM_ANTHROPIC_MODEL"},
		"llm.openai.api_key":     {"ESCAPEROOM_OPENAI_API_KEY", "OPENAI_API_KEY"},
		"llm.openai.model":       {"ESCAPEROOM_OPENAI_MODEL"},
		"llm.openai.base_url":    {"ESCAPEROOM_OPENAI_BASE_URL"},
		"llm.gemini.api_key":     {"ESCAPEROOM_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"llm.gemini.model":       {"ESCAPEROOM_GEMINI_MODEL"},
		"llm.openrouter.api_key": {"ESCAPEROOM_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
		"llm.openrouter.model":   {"ESCAPEROOM_OPENROUTER_MODEL"},
		"database.dsn":           {"ESCAPEROOM_DATABASE_DSN", "ESCAPEROOM_DB"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the configuration. path names an explicit config file;
// when empty, ./config.yaml is used if present. A .env file in the
// working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindAliases(v); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// With no key for the configured provider, fall back to whichever
	// vendor key is present in the environment.
	explicit := os.Getenv(EnvPrefix+"_LLM_PROVIDER") != "" || v.InConfig("llm.provider")
	if !cfg.LLM.HasKey() && !explicit {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "sqlite" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
	}
	if c.Game.InitialPuzzles < 1 {
		return fmt.Errorf("game.initial_puzzles must be at least 1, got %d", c.Game.InitialPuzzles)
	}
	switch c.Enhance.Embedder {
	case EmbedderAuto, EmbedderOpenAI, EmbedderHash:
	default:
		return fmt.Errorf("unknown enhance.embedder %q", c.Enhance.Embedder)
	}
	return nil
}
