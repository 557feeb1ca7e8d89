package store

import (
	"context"
	"time"

	"github.com/abhisek/escaperoom/internal/game"
)

// UserRepo persists player accounts.
type UserRepo struct {
	r runner
}

// Create inserts u and fills in its ID and CreatedAt. Duplicate
// usernames or emails yield game.ErrConflict.
func (repo *UserRepo) Create(ctx context.Context, u *game.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.CreatedAt = dbTime(u.CreatedAt)

	id, err := repo.r.insert(ctx,
		`INSERT INTO users (username, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		return repo.r.classify("create user", err)
	}
	u.ID = id
	return nil
}

// Get returns the user with id or game.ErrNotFound.
func (repo *UserRepo) Get(ctx context.Context, id int64) (*game.User, error) {
	var (
		u       game.User
		created timeValue
	)
	err := repo.r.queryRow(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &created)
	if err != nil {
		return nil, repo.r.classify("get user", err)
	}
	u.CreatedAt = created.Time
	return &u, nil
}

// Exists reports whether a user with id is present.
func (repo *UserRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := repo.r.queryRow(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, repo.r.classify("check user", err)
	}
	return n > 0, nil
}
