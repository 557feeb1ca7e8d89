// Package service implements the escape room game flows on top of the
// record store and the content collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/difficulty"
	"github.com/abhisek/escaperoom/internal/enhance"
	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/metrics"
	"github.com/abhisek/escaperoom/internal/puzzlegen"
	"github.com/abhisek/escaperoom/internal/store"
	"github.com/abhisek/escaperoom/internal/storyline"
)

// discardTimeout bounds the cleanup of a game whose setup failed.
const discardTimeout = 5 * time.Second

// StoryComposer composes a storyline for a new game.
type StoryComposer interface {
	Compose(ctx context.Context, brief storyline.Brief) storyline.Result
}

// Enhancer retrieves passages for a theme source.
type Enhancer interface {
	Enhance(ctx context.Context, source, text string, k int) enhance.Enhancement
}

// PuzzleSource produces puzzle content and never fails.
type PuzzleSource interface {
	Generate(ctx context.Context, input puzzlegen.Input) puzzlegen.Result
}

// GameService runs the game flows. Composer and enhancer are optional.
type GameService struct {
	store    *store.Store
	puzzles  PuzzleSource
	composer StoryComposer
	enhancer Enhancer
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// Option customizes a GameService.
type Option func(*GameService)

// WithComposer sets the storyline composer used by CreateGame.
func WithComposer(c StoryComposer) Option {
	return func(s *GameService) { s.composer = c }
}

// WithEnhancer sets the enhancer used by CreateGame.
func WithEnhancer(e Enhancer) Option {
	return func(s *GameService) { s.enhancer = e }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

// New creates a GameService.
func New(st *store.Store, puzzles PuzzleSource, cfg Config, logger zerolog.Logger, opts ...Option) *GameService {
	s := &GameService{
		store:   st,
		puzzles: puzzles,
		cfg:     cfg,
		logger:  logger.With().Str("component", "game").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a player with a bcrypt-hashed password.
func (s *GameService) CreateUser(ctx context.Context, in NewUser) (*game.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" {
		return nil, fmt.Errorf("username is required: %w", game.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("invalid email %q: %w", in.Email, game.ErrInvalidInput)
	}
	if len(in.Password) < s.cfg.MinPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters: %w", s.cfg.MinPasswordLen, game.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("password too long: %w", game.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &game.User{Username: in.Username, Email: in.Email, PasswordHash: string(hash), CreatedAt: s.now()}
	if err := s.store.Users().Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return u, nil
}

// GetUser returns the user with id.
func (s *GameService) GetUser(ctx context.Context, id int64) (*game.User, error) {
	return s.store.Users().Get(ctx, id)
}

// ListGames returns the games of a user, newest first.
func (s *GameService) ListGames(ctx context.Context, userID int64) ([]game.Game, error) {
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Games().ListByUser(ctx, userID)
}

// CreateGame starts a game: it stores the game, composes a storyline,
// retrieves theme passages and generates the initial puzzles. Storyline
// and enhancement failures are absorbed.
func (s *GameService) CreateGame(ctx context.Context, in NewGame) (*CreatedGame, error) {
	in.Theme = strings.TrimSpace(in.Theme)
	if in.Theme == "" {
		return nil, fmt.Errorf("theme is required: %w", game.ErrInvalidInput)
	}
	if in.Difficulty < 1 {
		return nil, fmt.Errorf("difficulty must be at least 1, got %d: %w", in.Difficulty, game.ErrInvalidInput)
	}

	g := &game.Game{
		UserID:     in.UserID,
		Theme:      in.Theme,
		AgeGroup:   strings.TrimSpace(in.AgeGroup),
		Difficulty: in.Difficulty,
		StartTime:  s.now(),
	}
	err := s.store.InTx(ctx, func(r store.Repos) error {
		ok, err := r.Users.Exists(ctx, in.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %d: %w", in.UserID, game.ErrInvalidReference)
		}
		return r.Games.Create(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	log := s.logger.With().Int64("game_id", g.ID).Str("theme", g.Theme).Logger()
	log.Info().Int("difficulty", g.Difficulty).Msg("game created")

	puzzles, err := s.furnish(ctx, g, log)
	if err != nil {
		s.discardGame(ctx, g.ID, log)
		return nil, err
	}
	return &CreatedGame{Game: g, Puzzles: puzzles}, nil
}

// furnish gives a freshly stored game its storyline and initial puzzles.
func (s *GameService) furnish(ctx context.Context, g *game.Game, log zerolog.Logger) ([]game.Puzzle, error) {
	var ideas []string
	if s.composer != nil {
		res := s.composer.Compose(ctx, storyline.Brief{Theme: g.Theme, AgeGroup: g.AgeGroup, Difficulty: g.Difficulty})
		if res.Err == nil && res.Story.Storyline != "" {
			if err := s.store.Games().SetStoryline(ctx, g.ID, res.Story.Storyline); err != nil {
				return nil, err
			}
			g.Storyline = res.Story.Storyline
		}
		ideas = res.Story.PuzzleIdeas
	}

	var passages []string
	if source := enhance.ThemeSource(s.cfg.EnhanceSource, g.Theme); s.enhancer != nil && source != "" {
		query := g.Storyline
		if query == "" {
			query = g.Theme
		}
		passages = s.enhancer.Enhance(ctx, source, query, s.cfg.EnhanceK).Passages
	}

	contexts := initialContexts(passages, ideas, s.cfg.initialPuzzles())
	puzzles := make([]game.Puzzle, 0, len(contexts))
	for _, c := range contexts {
		p, err := s.generate(ctx, g, puzzles, c)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, *p)
	}
	log.Info().Int("puzzles", len(puzzles)).Int("passages", len(passages)).Int("ideas", len(ideas)).
		Msg("initial puzzles generated")
	return puzzles, nil
}

// discardGame deletes a game whose setup failed so no half-built game is
// left behind. It runs even when ctx is already cancelled.
func (s *GameService) discardGame(ctx context.Context, id int64, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discardTimeout)
	defer cancel()
	if err := s.store.Games().Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("failed to discard incomplete game")
		return
	}
	log.Warn().Msg("incomplete game discarded")
}

// initialContexts picks one context per initial puzzle: passages first,
// then storyline puzzle ideas, else a single puzzle without context.
func initialContexts(passages, ideas []string, max int) []string {
	src := passages
	if len(src) == 0 {
		src = ideas
	}
	if len(src) == 0 {
		return []string{""}
	}
	if len(src) > max {
		src = src[:max]
	}
	return src
}

// GetGame returns the game with id.
func (s *GameService) GetGame(ctx context.Context, id int64) (*game.Game, error) {
	return s.store.Games().Get(ctx, id)
}

// ListPuzzles returns the puzzles of a game in generation order.
func (s *GameService) ListPuzzles(ctx context.Context, gameID int64) ([]game.Puzzle, error) {
	if _, err := s.store.Games().Get(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.Puzzles().ListByGame(ctx, gameID)
}

// NextDifficulty returns the difficulty the next generated puzzle of the
// game would get.
func (s *GameService) NextDifficulty(ctx context.Context, gameID int64) (float64, error) {
	g, err := s.store.Games().Get(ctx, gameID)
	if err != nil {
		return 0, err
	}
	puzzles, err := s.store.Puzzles().ListByGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	return difficulty.Next(g.Difficulty, puzzles), nil
}

// GeneratePuzzle generates and stores the next puzzle of a game at the
// difficulty adjusted from the player's solved puzzles, or from the
// game's base difficulty while nothing is solved.
func (s *GameService) GeneratePuzzle(ctx context.Context, gameID int64) (*game.Puzzle, error) {
	g, err := s.store.Games().Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	puzzles, err := s.store.Puzzles().ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, g, puzzles, "")
}

// generate runs the adapter outside any transaction, then inserts the
// puzzle. Nothing is written when ctx ended during generation.
func (s *GameService) generate(ctx context.Context, g *game.Game, existing []game.Puzzle, passage string) (*game.Puzzle, error) {
	d := difficulty.Next(g.Difficulty, existing)

	prior := make([]string, 0, len(existing))
	for _, p := range existing {
		prior = append(prior, p.Question)
	}

	res := s.puzzles.Generate(ctx, puzzlegen.Input{
		Theme:          g.Theme,
		Difficulty:     d,
		AgeGroup:       g.AgeGroup,
		Context:        passage,
		PriorQuestions: prior,
	})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generate puzzle for game %d: %w", g.ID, err)
	}

	p := &game.Puzzle{
		GameID:     g.ID,
		Question:   res.Content.Question,
		Answer:     res.Content.Answer,
		Hint:       res.Content.Hint,
		Difficulty: d,
		Source:     res.Source,
		CreatedAt:  s.now(),
	}
	if err := s.store.InTx(ctx, func(r store.Repos) error {
		return r.Puzzles.Create(ctx, p)
	}); err != nil {
		return nil, err
	}

	metrics.PuzzleDifficulty.Observe(p.Difficulty)
	s.logger.Info().
		Int64("game_id", g.ID).
		Int64("puzzle_id", p.ID).
		Float64("difficulty", p.Difficulty).
		Str("source", string(p.Source)).
		Msg("puzzle generated")
	return p, nil
}

// CheckAnswer evaluates a submitted answer inside a per-puzzle
// transaction. A newly solved puzzle adds its points to the game score.
func (s *GameService) CheckAnswer(ctx context.Context, puzzleID int64, submitted string) (*CheckResult, error) {
	var out CheckResult
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := r.Puzzles.GetForUpdate(ctx, puzzleID)
		if err != nil {
			return err
		}
		res := answer.Evaluate(p, submitted)
		if err := r.Puzzles.Update(ctx, p); err != nil {
			return err
		}
		out = CheckResult{Correct: res.Correct, Feedback: res.Feedback, Tier: res.Tier, Puzzle: *p}
		if res.NewlySolved {
			out.Points = difficulty.Points(p.Difficulty)
			return r.Games.AddScore(ctx, p.GameID, out.Points)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AnswersChecked.WithLabelValues(string(out.Tier)).Inc()
	s.logger.Debug().
		Int64("puzzle_id", puzzleID).
		Bool("correct", out.Correct).
		Str("tier", string(out.Tier)).
		Int("attempts", out.Puzzle.Attempts).
		Msg("answer checked")
	return &out, nil
}

// UpdatePerformance merges client-reported progress into a puzzle.
// Attempts only grow and solved never resets.
func (s *GameService) UpdatePerformance(ctx context.Context, puzzleID int64, perf Performance) (*game.Puzzle, error) {
	if math.IsNaN(perf.TimeSpent) || math.IsInf(perf.TimeSpent, 0) || perf.TimeSpent < 0 {
		return nil, fmt.Errorf("time_spent must be a non-negative number: %w", game.ErrInvalidInput)
	}
	if perf.Attempts < 0 {
		return nil, fmt.Errorf("attempts must be non-negative: %w", game.ErrInvalidInput)
	}

	var out game.Puzzle
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := r.Puzzles.GetForUpdate(ctx, puzzleID)
		if err != nil {
			return err
		}
		wasSolved := p.Solved
		p.TimeSpent = perf.TimeSpent
		p.Attempts = max(p.Attempts, perf.Attempts)
		p.Solved = p.Solved || perf.Solved
		if err := r.Puzzles.Update(ctx, p); err != nil {
			return err
		}
		out = *p
		if !wasSolved && p.Solved {
			return r.Games.AddScore(ctx, p.GameID, difficulty.Points(p.Difficulty))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FinishGame sets the game's end time. Finishing twice keeps the first
// end time.
func (s *GameService) FinishGame(ctx context.Context, gameID int64) (*game.Game, error) {
	finished, err := s.store.Games().Finish(ctx, gameID, s.now())
	if err != nil {
		return nil, err
	}
	g, err := s.store.Games().Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if finished {
		s.logger.Info().Int64("game_id", gameID).Int("score", g.Score).Msg("game finished")
	}
	return g, nil
}

// GameStats summarizes a game's puzzles and the next difficulty.
func (s *GameService) GameStats(ctx context.Context, gameID int64) (*GameStats, error) {
	g, err := s.store.Games().Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	puzzles, err := s.store.Puzzles().ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	st := &GameStats{
		Game:           g,
		Session:        difficulty.Aggregate(float64(g.Difficulty), puzzles),
		NextDifficulty: difficulty.Next(g.Difficulty, puzzles),
		Total:          len(puzzles),
	}
	for _, p := range puzzles {
		if p.Solved {
			st.Solved++
		}
		if p.Source == game.SourceFallback {
			st.Fallbacks++
		}
		st.TotalAttempts += p.Attempts
		st.TotalTime += p.TimeSpent
	}
	return st, nil
}
