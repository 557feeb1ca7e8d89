package httpapi

import (
	"fmt"
	"net/http"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/service"
)

// ------------------------------- USERS -------------------------------------

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.games.CreateUser(r.Context(), service.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUser(u))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.games.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUser(u))
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	games, err := s.games.ListGames(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]gameRes, 0, len(games))
	for i := range games {
		out = append(out, toGame(&games[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------- GAMES -------------------------------------

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	cg, err := s.games.CreateGame(r.Context(), service.NewGame{
		UserID:     req.UserID,
		Theme:      req.Theme,
		Difficulty: req.Difficulty,
		AgeGroup:   req.AgeGroup,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createGameRes{
		GameID:  cg.Game.ID,
		Game:    toGame(cg.Game),
		Puzzles: toPuzzles(cg.Puzzles),
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.games.GetGame(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGame(g))
}

func (s *Server) handleGameStats(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.games.GameStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStats(st))
}

func (s *Server) handleFinishGame(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.games.FinishGame(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGame(g))
}

// ------------------------------ PUZZLES ------------------------------------

func (s *Server) handleGeneratePuzzle(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := s.games.GeneratePuzzle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPuzzle(*p))
}

func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ps, err := s.games.ListPuzzles(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPuzzles(ps))
}

func (s *Server) handleCheckAnswer(w http.ResponseWriter, r *http.Request) {
	var req checkAnswerReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.PuzzleID <= 0 {
		writeError(w, r, fmt.Errorf("puzzle_id is required: %w", game.ErrInvalidInput))
		return
	}
	res, err := s.games.CheckAnswer(r.Context(), req.PuzzleID, req.Answer)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCheckAnswer(res))
}

func (s *Server) handleUpdatePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req performanceReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TimeSpent == nil {
		writeError(w, r, fmt.Errorf("time_spent is required: %w", game.ErrInvalidInput))
		return
	}
	p, err := s.games.UpdatePerformance(r.Context(), id, service.Performance{
		TimeSpent: *req.TimeSpent,
		Attempts:  req.Attempts,
		Solved:    req.Solved,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPuzzle(*p))
}
