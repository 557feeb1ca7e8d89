package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/game"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedGame(t *testing.T, s *Store) (*game.User, *game.Game) {
	t.Helper()
	ctx := context.Background()

	u := &game.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}
	require.NoError(t, s.Users().Create(ctx, u))

	g := &game.Game{UserID: u.ID, Theme: "haunted library", Difficulty: 1, AgeGroup: "adult"}
	require.NoError(t, s.Games().Create(ctx, g))
	return u, g
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}
	for _, tt := range tests {
		var got string
		require.NoError(t, s.DB().QueryRow("PRAGMA "+tt.pragma).Scan(&got), tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
	assert.NoError(t, s.Ping(context.Background()))
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u := &game.User{Username: "bob", Email: "bob@example.com", PasswordHash: "hash"}
	require.NoError(t, s.Users().Create(ctx, u))
	assert.NotZero(t, u.ID)

	got, err := s.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Second)

	dup := &game.User{Username: "bob", Email: "other@example.com", PasswordHash: "hash"}
	assert.ErrorIs(t, s.Users().Create(ctx, dup), game.ErrConflict)

	_, err = s.Users().Get(ctx, 999)
	assert.ErrorIs(t, err, game.ErrNotFound)

	ok, err := s.Users().Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGames(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, g := seedGame(t, s)

	got, err := s.Games().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "haunted library", got.Theme)
	assert.Equal(t, 0, got.Score)
	assert.Nil(t, got.EndTime)

	require.NoError(t, s.Games().SetStoryline(ctx, g.ID, "The doors lock at midnight."))
	require.NoError(t, s.Games().AddScore(ctx, g.ID, 106))
	require.NoError(t, s.Games().AddScore(ctx, g.ID, 100))

	got, err = s.Games().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "The doors lock at midnight.", got.Storyline)
	assert.Equal(t, 206, got.Score)

	games, err := s.Games().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, games, 1)

	assert.ErrorIs(t, s.Games().AddScore(ctx, 999, 1), game.ErrNotFound)
}

func TestGames_UnknownUser(t *testing.T) {
	s := openTestStore(t)
	err := s.Games().Create(context.Background(), &game.Game{UserID: 42, Theme: "space", Difficulty: 1})
	assert.ErrorIs(t, err, game.ErrInvalidReference)
}

func TestGames_DeleteCascadesToPuzzles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)
	require.NoError(t, s.Puzzles().Create(ctx, &game.Puzzle{GameID: g.ID, Question: "Q", Answer: "A", Difficulty: 1}))

	require.NoError(t, s.Games().Delete(ctx, g.ID))

	_, err := s.Games().Get(ctx, g.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)
	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM puzzles WHERE game_id = ?`, g.ID).Scan(&n))
	assert.Zero(t, n)

	assert.ErrorIs(t, s.Games().Delete(ctx, g.ID), game.ErrNotFound)
}

func TestGames_FinishIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished, err := s.Games().Finish(ctx, g.ID, first)
	require.NoError(t, err)
	assert.True(t, finished)

	finished, err = s.Games().Finish(ctx, g.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, finished)

	got, err := s.Games().Get(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EndTime)
	assert.True(t, first.Equal(*got.EndTime))

	_, err = s.Games().Finish(ctx, 999, first)
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestPuzzles_CreateListUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)

	for i := range 3 {
		p := &game.Puzzle{
			GameID:     g.ID,
			Question:   fmt.Sprintf("Q%d", i),
			Answer:     "A",
			Difficulty: 1.0 + float64(i)/10,
			Source:     game.SourceFallback,
		}
		require.NoError(t, s.Puzzles().Create(ctx, p))
	}

	list, err := s.Puzzles().ListByGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, p := range list {
		assert.Equal(t, fmt.Sprintf("Q%d", i), p.Question, "generation order")
		assert.Equal(t, game.SourceFallback, p.Source)
	}

	p := list[1]
	p.Attempts = 2
	p.TimeSpent = 45.5
	p.Solved = true
	p.Difficulty = 1.2
	require.NoError(t, s.Puzzles().Update(ctx, &p))

	got, err := s.Puzzles().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attempts)
	assert.Equal(t, 45.5, got.TimeSpent)
	assert.True(t, got.Solved)
	assert.InDelta(t, 1.2, got.Difficulty, 1e-9)

	_, err = s.Puzzles().Get(ctx, 999)
	assert.ErrorIs(t, err, game.ErrNotFound)

	err = s.Puzzles().Create(ctx, &game.Puzzle{GameID: 999, Question: "Q", Answer: "A"})
	assert.ErrorIs(t, err, game.ErrInvalidReference)
}

func TestPuzzles_NullDifficultyBackfilled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)

	for range 2 {
		_, err := s.DB().Exec(
			`INSERT INTO puzzles (game_id, question, answer, hint, difficulty, created_at) VALUES (?, 'Q', 'A', '', NULL, ?)`,
			g.ID, time.Now().UTC())
		require.NoError(t, err)
	}

	list, err := s.Puzzles().ListByGame(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, p := range list {
		assert.Equal(t, 1.0, p.Difficulty)
	}

	var nulls int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM puzzles WHERE difficulty IS NULL`).Scan(&nulls))
	assert.Zero(t, nulls, "normalized value written back")
}

func TestInTx_RollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)

	boom := errors.New("boom")
	err := s.InTx(ctx, func(r Repos) error {
		if err := r.Games.AddScore(ctx, g.ID, 50); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Games().Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Score)
}

func TestInTx_ConcurrentIncrementsNotLost(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, g := seedGame(t, s)

	p := &game.Puzzle{GameID: g.ID, Question: "Q", Answer: "A", Difficulty: 1}
	require.NoError(t, s.Puzzles().Create(ctx, p))

	const workers = 16
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.InTx(ctx, func(r Repos) error {
				cur, err := r.Puzzles.GetForUpdate(ctx, p.ID)
				if err != nil {
					return err
				}
				cur.Attempts++
				return r.Puzzles.Update(ctx, cur)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Puzzles().Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, workers, got.Attempts)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.LLMEvents()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, repo.Append(ctx, LLMEvent{RequestID: "r1", Provider: "mock", Model: "mock", Purpose: "puzzle-gen",
		InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true, CreatedAt: old}))
	require.NoError(t, repo.Append(ctx, LLMEvent{RequestID: "r2", Provider: "mock", Model: "mock", Purpose: "puzzle-gen",
		InputTokens: 20, OutputTokens: 5, LatencyMs: 300, ErrorMessage: "down"}))

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r2", recent[0].RequestID)
	assert.False(t, recent[0].Success)

	usage, err := repo.Usage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].Requests)
	assert.Equal(t, 1, usage[0].Failures)
	assert.Equal(t, 30, usage[0].InputTokens)
	assert.InDelta(t, 200, usage[0].AvgLatencyMs, 1e-9)

	n, err := repo.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestPersistenceErrorMatchesDomainKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &PersistenceError{Op: "get game", Err: errors.New("disk I/O error")})
	assert.ErrorIs(t, err, game.ErrPersistence)
	assert.NotErrorIs(t, err, game.ErrNotFound)
}

func TestDialects(t *testing.T) {
	pg, err := DialectFor("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM puzzles WHERE id = $1 AND game_id = $2",
		pg.RewriteQuery("SELECT * FROM puzzles WHERE id = ? AND game_id = ?"))
	assert.Equal(t, " FOR UPDATE", pg.LockClause())
	assert.False(t, pg.SupportsLastInsertId())

	my, err := DialectFor("mysql")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE a = ?", my.RewriteQuery("SELECT 1 WHERE a = ?"))

	lite, err := DialectFor("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", lite.Name())
	assert.Empty(t, lite.LockClause())

	_, err = DialectFor("oracle")
	assert.Error(t, err)

	assert.Equal(t, "a.db?_time_format=sqlite", sqliteDSN("a.db"))
	assert.Equal(t, "a.db?mode=rwc&_time_format=sqlite", sqliteDSN("a.db?mode=rwc"))

	for _, d := range []Dialect{pg, my, lite} {
		_, err := schemaFS.ReadFile(d.SchemaFile())
		assert.NoError(t, err, d.Name())
	}
}

func TestTimeValueScan(t *testing.T) {
	var tv timeValue
	require.NoError(t, tv.Scan("2026-03-01 12:00:00.5+00:00"))
	assert.Equal(t, 500*time.Millisecond, time.Duration(tv.Time.Nanosecond()))

	require.NoError(t, tv.Scan(nil))
	assert.Nil(t, tv.ptr())

	assert.Error(t, tv.Scan(3.14))
}
