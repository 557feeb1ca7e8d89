package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/abhisek/escaperoom/internal/game"
)

// PuzzleRepo persists puzzle records. Every read path runs through
// scanPuzzle, which is the single place absent difficulties are
// normalized; the normalized value is written back.
type PuzzleRepo struct {
	r runner
}

const puzzleColumns = `id, game_id, question, answer, hint, difficulty, attempts, time_spent, solved, source, created_at`

// Create inserts p and fills in its ID and CreatedAt. An unknown game
// yields game.ErrInvalidReference.
func (repo *PuzzleRepo) Create(ctx context.Context, p *game.Puzzle) error {
	p.Normalize()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.CreatedAt = dbTime(p.CreatedAt)

	id, err := repo.r.insert(ctx,
		`INSERT INTO puzzles (game_id, question, answer, hint, difficulty, attempts, time_spent, solved, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.GameID, p.Question, p.Answer, p.Hint, p.Difficulty, p.Attempts, p.TimeSpent, p.Solved, string(p.Source), p.CreatedAt)
	if err != nil {
		return repo.r.classify("create puzzle", err)
	}
	p.ID = id
	return nil
}

// Get returns the puzzle with id or game.ErrNotFound.
func (repo *PuzzleRepo) Get(ctx context.Context, id int64) (*game.Puzzle, error) {
	return repo.get(ctx, "get puzzle", `SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`, id)
}

// GetForUpdate reads the puzzle and locks its row until the surrounding
// transaction ends. Call it only on Repos obtained from Store.InTx.
func (repo *PuzzleRepo) GetForUpdate(ctx context.Context, id int64) (*game.Puzzle, error) {
	return repo.get(ctx, "lock puzzle",
		`SELECT `+puzzleColumns+` FROM puzzles WHERE id = ?`+repo.r.dialect.LockClause(), id)
}

func (repo *PuzzleRepo) get(ctx context.Context, op, query string, id int64) (*game.Puzzle, error) {
	p, backfill, err := scanPuzzle(repo.r.queryRow(ctx, query, id))
	if err != nil {
		return nil, repo.r.classify(op, err)
	}
	if backfill {
		if err := repo.backfill(ctx, []int64{p.ID}); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ListByGame returns the game's puzzles in generation order, read in a
// single query.
func (repo *PuzzleRepo) ListByGame(ctx context.Context, gameID int64) ([]game.Puzzle, error) {
	rows, err := repo.r.query(ctx,
		`SELECT `+puzzleColumns+` FROM puzzles WHERE game_id = ? ORDER BY id`, gameID)
	if err != nil {
		return nil, repo.r.classify("list puzzles", err)
	}

	var (
		out     []game.Puzzle
		pending []int64
	)
	for rows.Next() {
		p, backfill, err := scanPuzzle(rows)
		if err != nil {
			rows.Close()
			return nil, repo.r.classify("scan puzzle", err)
		}
		if backfill {
			pending = append(pending, p.ID)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, repo.r.classify("list puzzles", err)
	}
	// Release the connection before writing; SQLite has only one.
	rows.Close()

	if err := repo.backfill(ctx, pending); err != nil {
		return nil, err
	}
	return out, nil
}

// Update writes the mutable performance fields of p.
func (repo *PuzzleRepo) Update(ctx context.Context, p *game.Puzzle) error {
	p.Normalize()
	_, err := repo.r.exec(ctx,
		`UPDATE puzzles SET difficulty = ?, attempts = ?, time_spent = ?, solved = ? WHERE id = ?`,
		p.Difficulty, p.Attempts, p.TimeSpent, p.Solved, p.ID)
	if err != nil {
		return repo.r.classify("update puzzle", err)
	}
	return nil
}

// backfill persists the default difficulty for rows read with NULL.
func (repo *PuzzleRepo) backfill(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		_, err := repo.r.exec(ctx,
			`UPDATE puzzles SET difficulty = ? WHERE id = ? AND difficulty IS NULL`,
			game.DefaultDifficulty, id)
		if err != nil {
			return repo.r.classify("backfill difficulty", err)
		}
	}
	return nil
}

// scanPuzzle reads one row and reports whether its difficulty was NULL.
func scanPuzzle(row rowScanner) (*game.Puzzle, bool, error) {
	var (
		p          game.Puzzle
		difficulty sql.NullFloat64
		source     string
		created    timeValue
	)
	if err := row.Scan(&p.ID, &p.GameID, &p.Question, &p.Answer, &p.Hint, &difficulty,
		&p.Attempts, &p.TimeSpent, &p.Solved, &source, &created); err != nil {
		return nil, false, err
	}
	p.Difficulty = difficulty.Float64
	p.Source = game.Source(source)
	p.CreatedAt = created.Time
	p.Normalize()
	return &p, !difficulty.Valid, nil
}
