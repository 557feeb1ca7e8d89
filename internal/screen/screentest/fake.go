// Package screentest provides an in-memory screen.Games for screen tests.
package screentest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/difficulty"
	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/puzzlegen"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/service"
)

// Games keeps users, games and puzzles in memory. Generated puzzles use
// the fallback content unless Answer is set.
type Games struct {
	mu      sync.Mutex
	Err     error
	Answer  string
	users   map[int64]*game.User
	games   map[int64]*game.Game
	puzzles map[int64][]*game.Puzzle
	nextID  int64
	Calls   []string
}

var _ screen.Games = (*Games)(nil)

// New returns an empty fake.
func New() *Games {
	return &Games{
		users:   map[int64]*game.User{},
		games:   map[int64]*game.Game{},
		puzzles: map[int64][]*game.Puzzle{},
	}
}

func (f *Games) record(name string) error {
	f.Calls = append(f.Calls, name)
	return f.Err
}

func (f *Games) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *Games) CreateUser(_ context.Context, in service.NewUser) (*game.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateUser"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("username is required: %w", game.ErrInvalidInput)
	}
	u := &game.User{ID: f.id(), Username: in.Username, Email: in.Email}
	f.users[u.ID] = u
	return u, nil
}

func (f *Games) GetUser(_ context.Context, id int64) (*game.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetUser"); err != nil {
		return nil, err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	return u, nil
}

// AddUser seeds a user and returns it.
func (f *Games) AddUser(name string) *game.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &game.User{ID: f.id(), Username: name}
	f.users[u.ID] = u
	return u
}

func (f *Games) ListGames(_ context.Context, userID int64) ([]game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListGames"); err != nil {
		return nil, err
	}
	var out []game.Game
	for id := int64(1); id <= f.nextID; id++ {
		if g, ok := f.games[id]; ok && g.UserID == userID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (f *Games) CreateGame(ctx context.Context, in service.NewGame) (*service.CreatedGame, error) {
	f.mu.Lock()
	if err := f.record("CreateGame"); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	g := &game.Game{ID: f.id(), UserID: in.UserID, Theme: in.Theme, AgeGroup: in.AgeGroup,
		Difficulty: in.Difficulty, Storyline: "You wake in a locked " + in.Theme + "."}
	f.games[g.ID] = g
	f.mu.Unlock()

	p, err := f.GeneratePuzzle(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	cp := *g
	return &service.CreatedGame{Game: &cp, Puzzles: []game.Puzzle{*p}}, nil
}

func (f *Games) GetGame(_ context.Context, id int64) (*game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, game.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (f *Games) ListPuzzles(_ context.Context, gameID int64) ([]game.Puzzle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListPuzzles"); err != nil {
		return nil, err
	}
	out := make([]game.Puzzle, 0, len(f.puzzles[gameID]))
	for _, p := range f.puzzles[gameID] {
		out = append(out, *p)
	}
	return out, nil
}

func (f *Games) GeneratePuzzle(_ context.Context, gameID int64) (*game.Puzzle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GeneratePuzzle"); err != nil {
		return nil, err
	}
	g, ok := f.games[gameID]
	if !ok {
		return nil, game.ErrNotFound
	}
	content := puzzlegen.Fallback(g.Theme)
	src := game.SourceFallback
	if f.Answer != "" {
		content.Answer = f.Answer
		src = game.SourceLLM
	}
	var existing []game.Puzzle
	for _, p := range f.puzzles[gameID] {
		existing = append(existing, *p)
	}
	p := &game.Puzzle{
		ID: f.id(), GameID: gameID,
		Question: content.Question, Answer: content.Answer, Hint: content.Hint,
		Difficulty: difficulty.Next(g.Difficulty, existing),
		Source:     src,
	}
	f.puzzles[gameID] = append(f.puzzles[gameID], p)
	cp := *p
	return &cp, nil
}

func (f *Games) find(puzzleID int64) *game.Puzzle {
	for _, ps := range f.puzzles {
		for _, p := range ps {
			if p.ID == puzzleID {
				return p
			}
		}
	}
	return nil
}

func (f *Games) CheckAnswer(_ context.Context, puzzleID int64, submitted string) (*service.CheckResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CheckAnswer"); err != nil {
		return nil, err
	}
	p := f.find(puzzleID)
	if p == nil {
		return nil, game.ErrNotFound
	}
	res := answer.Evaluate(p, submitted)
	out := &service.CheckResult{Correct: res.Correct, Feedback: res.Feedback, Tier: res.Tier, Puzzle: *p}
	if res.NewlySolved {
		out.Points = difficulty.Points(p.Difficulty)
		f.games[p.GameID].Score += out.Points
	}
	return out, nil
}

func (f *Games) UpdatePerformance(_ context.Context, puzzleID int64, perf service.Performance) (*game.Puzzle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdatePerformance"); err != nil {
		return nil, err
	}
	p := f.find(puzzleID)
	if p == nil {
		return nil, game.ErrNotFound
	}
	p.TimeSpent = perf.TimeSpent
	p.Attempts = max(p.Attempts, perf.Attempts)
	p.Solved = p.Solved || perf.Solved
	cp := *p
	return &cp, nil
}

func (f *Games) FinishGame(_ context.Context, gameID int64) (*game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("FinishGame"); err != nil {
		return nil, err
	}
	g, ok := f.games[gameID]
	if !ok {
		return nil, game.ErrNotFound
	}
	if g.EndTime == nil {
		now := time.Now()
		g.EndTime = &now
	}
	cp := *g
	return &cp, nil
}

func (f *Games) GameStats(_ context.Context, gameID int64) (*service.GameStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GameStats"); err != nil {
		return nil, err
	}
	g, ok := f.games[gameID]
	if !ok {
		return nil, game.ErrNotFound
	}
	var puzzles []game.Puzzle
	for _, p := range f.puzzles[gameID] {
		puzzles = append(puzzles, *p)
	}
	cp := *g
	st := &service.GameStats{
		Game:           &cp,
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

func (f *Games) NextDifficulty(_ context.Context, gameID int64) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return 0, game.ErrNotFound
	}
	var puzzles []game.Puzzle
	for _, p := range f.puzzles[gameID] {
		puzzles = append(puzzles, *p)
	}
	return difficulty.Next(g.Difficulty, puzzles), nil
}
