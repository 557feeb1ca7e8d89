package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/metrics"
	"github.com/abhisek/escaperoom/internal/puzzlegen"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	metrics.Init()

	st, err := store.Open(filepath.Join(t.TempDir(), "http.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	// No generator configured: every puzzle is the fallback puzzle.
	adapter := puzzlegen.NewAdapter(nil, 0, zerolog.Nop())
	svc := service.New(st, adapter, service.DefaultConfig(), zerolog.Nop())

	srv := httptest.NewServer(New(svc, st, DefaultConfig(), zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func doList(t *testing.T, url string) []map[string]any {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createUser(t *testing.T, base string) int64 {
	t.Helper()
	resp, body := do(t, http.MethodPost, base+"/users", map[string]any{
		"username": "ada", "email": "ada@example.com", "password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return int64(body["id"].(float64))
}

func createGame(t *testing.T, base string, userID int64) (int64, int64) {
	t.Helper()
	resp, body := do(t, http.MethodPost, base+"/games", map[string]any{
		"user_id": userID, "theme": "pirate ship", "difficulty": 1, "age_group": "kids",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	puzzles := body["puzzles"].([]any)
	require.Len(t, puzzles, 1)
	first := puzzles[0].(map[string]any)
	return int64(body["game_id"].(float64)), int64(first["id"].(float64))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["ok"])

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "escaperoom_http_requests_total")
}

func TestUsers(t *testing.T) {
	srv := newTestServer(t)
	id := createUser(t, srv.URL)

	resp, body := do(t, http.MethodGet, fmt.Sprintf("%s/users/%d", srv.URL, id), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ada", body["username"])
	assert.NotContains(t, body, "password_hash")

	resp, body = do(t, http.MethodPost, srv.URL+"/users", map[string]any{
		"username": "ada", "email": "x@example.com", "password": "correct horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", body["error"])

	resp, body = do(t, http.MethodPost, srv.URL+"/users", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_input", body["error"])

	resp, _ = do(t, http.MethodGet, srv.URL+"/users/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/users/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateGame_Errors(t *testing.T) {
	srv := newTestServer(t)
	userID := createUser(t, srv.URL)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"unknown user", map[string]any{"user_id": 999, "theme": "space", "difficulty": 1}, "invalid_reference"},
		{"zero difficulty", map[string]any{"user_id": userID, "theme": "space", "difficulty": 0}, "invalid_input"},
		{"missing theme", map[string]any{"user_id": userID, "difficulty": 2}, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/games", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestGameFlow(t *testing.T) {
	srv := newTestServer(t)
	userID := createUser(t, srv.URL)
	gameID, puzzleID := createGame(t, srv.URL, userID)

	resp, body := do(t, http.MethodGet, fmt.Sprintf("%s/games/%d", srv.URL, gameID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pirate ship", body["theme"])
	assert.Nil(t, body["end_time"])

	// Answers stay hidden until solved.
	puzzles := doList(t, fmt.Sprintf("%s/games/%d/puzzles", srv.URL, gameID))
	require.Len(t, puzzles, 1)
	assert.NotContains(t, puzzles[0], "answer")
	assert.Equal(t, "Default question for pirate ship", puzzles[0]["question"])
	assert.Equal(t, "fallback", puzzles[0]["source"])

	resp, body = do(t, http.MethodPost, srv.URL+"/puzzles/check-answer", map[string]any{
		"puzzle_id": puzzleID, "answer": "default answe",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["is_correct"])
	assert.Equal(t, "close", body["tier"])
	assert.Equal(t, "Incorrect. Try again! You're close!", body["feedback"])

	resp, body = do(t, http.MethodPost, srv.URL+"/puzzles/check-answer", map[string]any{
		"puzzle_id": puzzleID, "answer": "DEFAULT answer",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_correct"])
	assert.Equal(t, "Correct!", body["feedback"])
	assert.Equal(t, float64(2), body["attempts"])

	puzzles = doList(t, fmt.Sprintf("%s/games/%d/puzzles", srv.URL, gameID))
	assert.Equal(t, "Default answer", puzzles[0]["answer"])

	resp, body = do(t, http.MethodPost, fmt.Sprintf("%s/games/%d/puzzles", srv.URL, gameID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	next := int64(body["id"].(float64))

	resp, body = do(t, http.MethodPut, fmt.Sprintf("%s/puzzles/%d/performance", srv.URL, next), map[string]any{
		"time_spent": 75.5, "attempts": 2, "solved": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 75.5, body["time_spent"])

	resp, body = do(t, http.MethodGet, fmt.Sprintf("%s/games/%d/stats", srv.URL, gameID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["puzzles"])
	assert.Equal(t, float64(1), body["solved"])
	assert.Equal(t, float64(2), body["fallbacks"])
	assert.Greater(t, body["score"].(float64), float64(0))

	resp, body = do(t, http.MethodPost, fmt.Sprintf("%s/games/%d/finish", srv.URL, gameID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	endTime := body["end_time"]
	assert.NotNil(t, endTime)

	resp, body = do(t, http.MethodPost, fmt.Sprintf("%s/games/%d/finish", srv.URL, gameID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, endTime, body["end_time"])

	games := doList(t, fmt.Sprintf("%s/users/%d/games", srv.URL, userID))
	assert.Len(t, games, 1)
}

func TestPuzzleErrors(t *testing.T) {
	srv := newTestServer(t)
	userID := createUser(t, srv.URL)
	_, puzzleID := createGame(t, srv.URL, userID)

	resp, body := do(t, http.MethodPost, srv.URL+"/puzzles/check-answer", map[string]any{"puzzle_id": 4242, "answer": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/puzzles/check-answer", map[string]any{"answer": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, fmt.Sprintf("%s/puzzles/%d/performance", srv.URL, puzzleID), map[string]any{"attempts": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, fmt.Sprintf("%s/puzzles/%d/performance", srv.URL, puzzleID), map[string]any{"time_spent": -3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/games/999/puzzles", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["error"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
		code string
	}{
		{fmt.Errorf("x: %w", game.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{fmt.Errorf("x: %w", game.ErrInvalidReference), http.StatusBadRequest, "invalid_reference"},
		{fmt.Errorf("x: %w", game.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("x: %w", game.ErrConflict), http.StatusConflict, "conflict"},
		{&store.PersistenceError{Op: "x", Err: errors.New("disk full")}, http.StatusInternalServerError, "internal"},
		{context.DeadlineExceeded, http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		assert.Equal(t, tt.want, status, tt.err.Error())
		assert.Equal(t, tt.code, code)
	}
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/games/1", nil)
	writeError(rec, req, &store.PersistenceError{Op: "get game", Err: errors.New("secret dsn leaked")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
