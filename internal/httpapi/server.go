// Package httpapi exposes the game service over HTTP/JSON.
//
// Routes:
//   - GET  /health, GET /metrics
//   - POST /users, GET /users/{id}, GET /users/{id}/games
//   - POST /games, GET /games/{id}, GET /games/{id}/stats, POST /games/{id}/finish
//   - POST /games/{id}/puzzles, GET /games/{id}/puzzles
//   - POST /puzzles/check-answer, PUT /puzzles/{id}/performance
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/abhisek/escaperoom/internal/metrics"
	"github.com/abhisek/escaperoom/internal/service"
)

// Config holds HTTP server settings.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// AllowedOrigin enables CORS for one origin. Empty disables CORS.
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

// DefaultConfig returns the default server settings. Game creation runs
// several LLM calls, hence the generous request timeout.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		RequestTimeout:  3 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server bundles the router and its dependencies.
type Server struct {
	r      *chi.Mux
	games  *service.GameService
	db     Pinger
	cfg    Config
	logger zerolog.Logger
}

// New constructs a Server, installs middleware and registers routes.
func New(games *service.GameService, db Pinger, cfg Config, logger zerolog.Logger) *Server {
	s := &Server{
		r:      chi.NewRouter(),
		games:  games,
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "http").Logger(),
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(hlog.NewHandler(s.logger))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(metrics.Middleware)
	if cfg.RequestTimeout > 0 {
		s.r.Use(chimw.Timeout(cfg.RequestTimeout))
	}
	if cfg.AllowedOrigin != "" {
		s.r.Use(cors(cfg.AllowedOrigin))
	}

	s.r.Get("/health", s.handleHealth)
	s.r.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Post("/users", s.handleCreateUser)
		r.Get("/users/{id}", s.handleGetUser)
		r.Get("/users/{id}/games", s.handleListGames)

		r.Route("/games", func(r chi.Router) {
			r.Post("/", s.handleCreateGame)
			r.Get("/{id}", s.handleGetGame)
			r.Get("/{id}/stats", s.handleGameStats)
			r.Post("/{id}/finish", s.handleFinishGame)
			r.Post("/{id}/puzzles", s.handleGeneratePuzzle)
			r.Get("/{id}/puzzles", s.handleListPuzzles)
		})

		r.Post("/puzzles/check-answer", s.handleCheckAnswer)
		r.Put("/puzzles/{id}/performance", s.handleUpdatePerformance)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "no route for " + r.URL.Path})
	})

	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ----------------------------- middleware ----------------------------------

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
