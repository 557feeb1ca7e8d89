package httpapi

import (
	"time"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/service"
)

type createUserReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userRes struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(u *game.User) userRes {
	return userRes{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

type createGameReq struct {
	UserID     int64  `json:"user_id"`
	Theme      string `json:"theme"`
	Difficulty int    `json:"difficulty"`
	AgeGroup   string `json:"age_group"`
}

type gameRes struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Theme      string     `json:"theme"`
	Difficulty int        `json:"difficulty"`
	AgeGroup   string     `json:"age_group"`
	Score      int        `json:"score"`
	Storyline  string     `json:"storyline"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
}

func toGame(g *game.Game) gameRes {
	return gameRes{
		ID:         g.ID,
		UserID:     g.UserID,
		Theme:      g.Theme,
		Difficulty: g.Difficulty,
		AgeGroup:   g.AgeGroup,
		Score:      g.Score,
		Storyline:  g.Storyline,
		StartTime:  g.StartTime,
		EndTime:    g.EndTime,
	}
}

type createGameRes struct {
	GameID  int64       `json:"game_id"`
	Game    gameRes     `json:"game"`
	Puzzles []puzzleRes `json:"puzzles"`
}

// puzzleRes hides the answer until the puzzle is solved.
type puzzleRes struct {
	ID         int64   `json:"id"`
	GameID     int64   `json:"game_id"`
	Question   string  `json:"question"`
	Hint       string  `json:"hint"`
	Answer     string  `json:"answer,omitempty"`
	Difficulty float64 `json:"difficulty"`
	Attempts   int     `json:"attempts"`
	TimeSpent  float64 `json:"time_spent"`
	Solved     bool    `json:"solved"`
	Source     string  `json:"source"`
}

func toPuzzle(p game.Puzzle) puzzleRes {
	out := puzzleRes{
		ID:         p.ID,
		GameID:     p.GameID,
		Question:   p.Question,
		Hint:       p.Hint,
		Difficulty: p.Difficulty,
		Attempts:   p.Attempts,
		TimeSpent:  p.TimeSpent,
		Solved:     p.Solved,
		Source:     string(p.Source),
	}
	if p.Solved {
		out.Answer = p.Answer
	}
	return out
}

func toPuzzles(ps []game.Puzzle) []puzzleRes {
	out := make([]puzzleRes, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPuzzle(p))
	}
	return out
}

type checkAnswerReq struct {
	PuzzleID int64  `json:"puzzle_id"`
	Answer   string `json:"answer"`
}

type checkAnswerRes struct {
	IsCorrect  bool    `json:"is_correct"`
	Feedback   string  `json:"feedback"`
	Tier       string  `json:"tier"`
	Attempts   int     `json:"attempts"`
	Difficulty float64 `json:"difficulty"`
	Points     int     `json:"points"`
}

func toCheckAnswer(r *service.CheckResult) checkAnswerRes {
	return checkAnswerRes{
		IsCorrect:  r.Correct,
		Feedback:   r.Feedback,
		Tier:       string(r.Tier),
		Attempts:   r.Puzzle.Attempts,
		Difficulty: r.Puzzle.Difficulty,
		Points:     r.Points,
	}
}

type performanceReq struct {
	TimeSpent *float64 `json:"time_spent"`
	Attempts  int      `json:"attempts"`
	Solved    bool     `json:"solved"`
}

type statsRes struct {
	GameID         int64   `json:"game_id"`
	Score          int     `json:"score"`
	Finished       bool    `json:"finished"`
	Puzzles        int     `json:"puzzles"`
	Solved         int     `json:"solved"`
	Fallbacks      int     `json:"fallbacks"`
	TotalAttempts  int     `json:"total_attempts"`
	TotalTime      float64 `json:"total_time"`
	AvgDifficulty  float64 `json:"avg_difficulty"`
	AvgAttempts    float64 `json:"avg_attempts"`
	AvgTime        float64 `json:"avg_time"`
	NextDifficulty float64 `json:"next_difficulty"`
}

func toStats(st *service.GameStats) statsRes {
	return statsRes{
		GameID:         st.Game.ID,
		Score:          st.Game.Score,
		Finished:       st.Game.Finished(),
		Puzzles:        st.Total,
		Solved:         st.Solved,
		Fallbacks:      st.Fallbacks,
		TotalAttempts:  st.TotalAttempts,
		TotalTime:      st.TotalTime,
		AvgDifficulty:  st.Session.AvgDifficulty,
		AvgAttempts:    st.Session.AvgAttempts,
		AvgTime:        st.Session.AvgTime,
		NextDifficulty: st.NextDifficulty,
	}
}
