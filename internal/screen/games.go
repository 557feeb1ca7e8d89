package screen

import (
	"context"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/service"
)

// Games is the slice of the game service the terminal client drives.
// *service.GameService satisfies it.
type Games interface {
	CreateUser(ctx context.Context, in service.NewUser) (*game.User, error)
	GetUser(ctx context.Context, id int64) (*game.User, error)
	ListGames(ctx context.Context, userID int64) ([]game.Game, error)
	CreateGame(ctx context.Context, in service.NewGame) (*service.CreatedGame, error)
	GetGame(ctx context.Context, id int64) (*game.Game, error)
	ListPuzzles(ctx context.Context, gameID int64) ([]game.Puzzle, error)
	GeneratePuzzle(ctx context.Context, gameID int64) (*game.Puzzle, error)
	CheckAnswer(ctx context.Context, puzzleID int64, submitted string) (*service.CheckResult, error)
	UpdatePerformance(ctx context.Context, puzzleID int64, perf service.Performance) (*game.Puzzle, error)
	FinishGame(ctx context.Context, gameID int64) (*game.Game, error)
	GameStats(ctx context.Context, gameID int64) (*service.GameStats, error)
	NextDifficulty(ctx context.Context, gameID int64) (float64, error)
}

var _ Games = (*service.GameService)(nil)
