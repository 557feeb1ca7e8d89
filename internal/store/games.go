package store

import (
	"context"
	"time"

	"github.com/abhisek/escaperoom/internal/game"
)

// GameRepo persists game sessions.
type GameRepo struct {
	r runner
}

const gameColumns = `id, user_id, theme, difficulty, age_group, score, storyline, start_time, end_time`

// Create inserts g and fills in its ID. StartTime defaults to now.
func (repo *GameRepo) Create(ctx context.Context, g *game.Game) error {
	if g.StartTime.IsZero() {
		g.StartTime = time.Now()
	}
	g.StartTime = dbTime(g.StartTime)

	id, err := repo.r.insert(ctx,
		`INSERT INTO games (user_id, theme, difficulty, age_group, score, storyline, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Theme, g.Difficulty, g.AgeGroup, g.Score, g.Storyline, g.StartTime, nullableTime(g.EndTime))
	if err != nil {
		return repo.r.classify("create game", err)
	}
	g.ID = id
	return nil
}

// Get returns the game with id or game.ErrNotFound.
func (repo *GameRepo) Get(ctx context.Context, id int64) (*game.Game, error) {
	row := repo.r.queryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if err != nil {
		return nil, repo.r.classify("get game", err)
	}
	return g, nil
}

// ListByUser returns a user's games, newest first.
func (repo *GameRepo) ListByUser(ctx context.Context, userID int64) ([]game.Game, error) {
	rows, err := repo.r.query(ctx,
		`SELECT `+gameColumns+` FROM games WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, repo.r.classify("list games", err)
	}
	defer rows.Close()

	var out []game.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, repo.r.classify("scan game", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, repo.r.classify("list games", err)
	}
	return out, nil
}

// SetStoryline replaces the game's storyline.
func (repo *GameRepo) SetStoryline(ctx context.Context, id int64, storyline string) error {
	return repo.updateOne(ctx, "set storyline",
		`UPDATE games SET storyline = ? WHERE id = ?`, storyline, id)
}

// AddScore increments the game's score atomically.
func (repo *GameRepo) AddScore(ctx context.Context, id int64, points int) error {
	return repo.updateOne(ctx, "add score",
		`UPDATE games SET score = score + ? WHERE id = ?`, points, id)
}

// Finish sets end_time if it is unset. It reports whether this call
// finished the game; finishing twice is not an error.
func (repo *GameRepo) Finish(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := repo.r.exec(ctx,
		`UPDATE games SET end_time = ? WHERE id = ? AND end_time IS NULL`, dbTime(at), id)
	if err != nil {
		return false, repo.r.classify("finish game", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repo.r.classify("finish game", err)
	}
	if n > 0 {
		return true, nil
	}
	// Distinguish "already finished" from "no such game".
	if _, err := repo.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Delete removes the game. Its puzzles go with it.
func (repo *GameRepo) Delete(ctx context.Context, id int64) error {
	return repo.updateOne(ctx, "delete game", `DELETE FROM games WHERE id = ?`, id)
}

func (repo *GameRepo) updateOne(ctx context.Context, op, query string, args ...any) error {
	res, err := repo.r.exec(ctx, query, args...)
	if err != nil {
		return repo.r.classify(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return repo.r.classify(op, err)
	}
	if n == 0 {
		// MySQL reports zero rows for no-op updates; confirm existence.
		if _, err := repo.Get(ctx, args[len(args)-1].(int64)); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*game.Game, error) {
	var (
		g          game.Game
		start, end timeValue
	)
	if err := row.Scan(&g.ID, &g.UserID, &g.Theme, &g.Difficulty, &g.AgeGroup,
		&g.Score, &g.Storyline, &start, &end); err != nil {
		return nil, err
	}
	g.StartTime = start.Time
	g.EndTime = end.ptr()
	return &g, nil
}
