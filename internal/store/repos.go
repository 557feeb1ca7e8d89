package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Repos groups the record repositories bound to one connection or
// transaction.
type Repos struct {
	Users   *UserRepo
	Games   *GameRepo
	Puzzles *PuzzleRepo
}

func newRepos(r runner) Repos {
	return Repos{
		Users:   &UserRepo{r: r},
		Games:   &GameRepo{r: r},
		Puzzles: &PuzzleRepo{r: r},
	}
}

// Repos returns repositories that run outside any transaction.
func (s *Store) Repos() Repos {
	return newRepos(s.runner())
}

// Users, Games and Puzzles are shorthands for Repos().X.
func (s *Store) Users() *UserRepo     { return s.Repos().Users }
func (s *Store) Games() *GameRepo     { return s.Repos().Games }
func (s *Store) Puzzles() *PuzzleRepo { return s.Repos().Puzzles }

// LLMEvents returns the LLM request event log.
func (s *Store) LLMEvents() *LLMEventRepo {
	return &LLMEventRepo{r: s.runner()}
}

func (s *Store) runner() runner {
	return runner{q: s.db, dialect: s.dialect}
}

// InTx runs fn inside a transaction. Any error from fn, or a panic,
// rolls the transaction back; otherwise it commits.
//
// fn must only use the Repos it is given. On SQLite the pool has a
// single connection, so touching the Store from inside fn deadlocks.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin tx", Err: err}
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if err = fn(newRepos(runner{q: tx, dialect: s.dialect})); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit tx", Err: err}
	}
	return nil
}
