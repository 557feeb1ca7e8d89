// Package room is the play screen: one puzzle at a time, with the
// storyline on top and the answer box below.
package room

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/escaperoom/internal/answer"
	"github.com/abhisek/escaperoom/internal/game"
	"github.com/abhisek/escaperoom/internal/router"
	"github.com/abhisek/escaperoom/internal/screen"
	"github.com/abhisek/escaperoom/internal/screens/summary"
	"github.com/abhisek/escaperoom/internal/service"
	"github.com/abhisek/escaperoom/internal/ui/components"
	"github.com/abhisek/escaperoom/internal/ui/layout"
)

const tickInterval = time.Second

// RoomScreen implements screen.Screen for an open game.
type RoomScreen struct {
	games  screen.Games
	gameID int64
	game   *game.Game

	puzzles []game.Puzzle
	current int // index into puzzles, -1 while none is active

	input    components.TextInput
	showHint bool
	feedback *service.CheckResult
	next     float64 // difficulty of the next generated puzzle, 0 if unknown

	// baseTime is the puzzle's stored time when it became active;
	// elapsed counts this visit.
	baseTime float64
	elapsed  time.Duration

	busy   string
	errMsg string
}

var _ screen.Screen = (*RoomScreen)(nil)
var _ screen.KeyHintProvider = (*RoomScreen)(nil)
var _ screen.StatusProvider = (*RoomScreen)(nil)
var _ screen.TextEntry = (*RoomScreen)(nil)

// New opens a freshly created game.
func New(games screen.Games, created *service.CreatedGame) *RoomScreen {
	r := newRoom(games, created.Game.ID)
	r.game = created.Game
	r.puzzles = created.Puzzles
	return r
}

// Resume opens an existing game by id and loads its puzzles.
func Resume(games screen.Games, gameID int64) *RoomScreen {
	r := newRoom(games, gameID)
	r.busy = "Unlocking the door..."
	return r
}

func newRoom(games screen.Games, gameID int64) *RoomScreen {
	return &RoomScreen{
		games:   games,
		gameID:  gameID,
		current: -1,
		input:   components.NewTextInput("", "Type your answer...", 200),
	}
}

func (r *RoomScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{r.input.Init(), tick()}
	if r.game == nil {
		cmds = append(cmds, r.load())
	} else {
		cmds = append(cmds, r.advance())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}

func (r *RoomScreen) Title() string {
	if r.game == nil {
		return "Room"
	}
	return "The " + r.game.Theme
}

func (r *RoomScreen) Typing() bool {
	return r.busy == "" && r.errMsg == ""
}

func (r *RoomScreen) Status() *layout.Status {
	if r.game == nil {
		return nil
	}
	st := &layout.Status{Score: r.game.Score, Difficulty: float64(r.game.Difficulty)}
	if p := r.active(); p != nil {
		st.Difficulty = p.Difficulty
	}
	return st
}

func (r *RoomScreen) KeyHints() []layout.KeyHint {
	if r.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Leave"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
	if p := r.active(); p != nil && p.Solved {
		hints = []layout.KeyHint{{Key: "Enter", Description: "Next puzzle"}}
	}
	return append(hints,
		layout.KeyHint{Key: "Tab", Description: "Hint"},
		layout.KeyHint{Key: "Ctrl+N", Description: "Skip"},
		layout.KeyHint{Key: "Ctrl+F", Description: "Finish"},
		layout.KeyHint{Key: "Esc", Description: "Leave"},
	)
}

func (r *RoomScreen) active() *game.Puzzle {
	if r.current < 0 || r.current >= len(r.puzzles) {
		return nil
	}
	return &r.puzzles[r.current]
}

func (r *RoomScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case roomLoadedMsg:
		return r.handleLoaded(msg)

	case puzzleReadyMsg:
		r.busy = ""
		if msg.Err != nil {
			r.errMsg = msg.Err.Error()
			return r, nil
		}
		r.puzzles = append(r.puzzles, *msg.Puzzle)
		r.activate(len(r.puzzles) - 1)
		return r, nil

	case checkedMsg:
		return r.handleChecked(msg)

	case nextDifficultyMsg:
		if msg.Err == nil {
			r.next = msg.Difficulty
		}
		return r, nil

	case timerTickMsg:
		if p := r.active(); p != nil && !p.Solved && r.busy == "" {
			r.elapsed += tickInterval
		}
		return r, tick()

	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}

	if r.Typing() {
		var cmd tea.Cmd
		r.input, cmd = r.input.Update(msg)
		return r, cmd
	}
	return r, nil
}

func (r *RoomScreen) handleLoaded(msg roomLoadedMsg) (screen.Screen, tea.Cmd) {
	r.busy = ""
	if msg.Err != nil {
		r.errMsg = msg.Err.Error()
		return r, nil
	}
	r.game = msg.Game
	r.puzzles = msg.Puzzles
	return r, r.advance()
}

func (r *RoomScreen) handleChecked(msg checkedMsg) (screen.Screen, tea.Cmd) {
	r.busy = ""
	if msg.Err != nil {
		r.errMsg = msg.Err.Error()
		return r, nil
	}
	res := msg.Result
	r.feedback = res
	r.puzzles[r.current] = res.Puzzle
	r.game.Score += res.Points
	r.input.Reset()
	if res.Tier != answer.TierCorrect {
		return r, nil
	}
	games, id := r.games, r.gameID
	return r, func() tea.Msg {
		d, err := games.NextDifficulty(context.Background(), id)
		return nextDifficultyMsg{Difficulty: d, Err: err}
	}
}

func (r *RoomScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if r.busy != "" || r.errMsg != "" {
		return r, nil
	}

	switch msg.String() {
	case "tab":
		r.showHint = !r.showHint
		return r, nil
	case "ctrl+n":
		return r, r.skip()
	case "ctrl+f":
		return r, r.finish()
	case "enter":
		p := r.active()
		if p == nil {
			return r, nil
		}
		if p.Solved {
			return r, r.advance()
		}
		return r, r.submit()
	}

	// Any typing clears stale feedback.
	if r.feedback != nil && r.feedback.Tier != answer.TierCorrect {
		r.feedback = nil
	}
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// activate makes puzzles[i] the current puzzle and restarts its clock.
func (r *RoomScreen) activate(i int) {
	r.current = i
	r.feedback = nil
	r.showHint = false
	r.next = 0
	r.elapsed = 0
	r.baseTime = r.puzzles[i].TimeSpent
	r.input.Reset()
}

// advance moves to the next unsolved puzzle after the current one,
// wrapping around, or generates a new puzzle when every one is solved.
func (r *RoomScreen) advance() tea.Cmd {
	if i := r.nextUnsolved(r.current); i >= 0 {
		r.activate(i)
		return nil
	}
	return r.generate()
}

// skip saves time spent and moves on, generating a new puzzle when no
// other unsolved one is waiting.
func (r *RoomScreen) skip() tea.Cmd {
	save := r.saveTime()
	i := r.nextUnsolved(r.current)
	if i >= 0 && i != r.current {
		r.activate(i)
		return save
	}
	if save == nil {
		return r.generate()
	}
	return tea.Sequence(save, r.generate())
}

func (r *RoomScreen) nextUnsolved(from int) int {
	n := len(r.puzzles)
	for k := 1; k <= n; k++ {
		i := (from + k + n) % n
		if from < 0 {
			i = k - 1
		}
		if !r.puzzles[i].Solved {
			return i
		}
	}
	return -1
}

func (r *RoomScreen) timeSpent() float64 {
	return r.baseTime + r.elapsed.Seconds()
}

// saveTime records time on the active unsolved puzzle.
func (r *RoomScreen) saveTime() tea.Cmd {
	p := r.active()
	if p == nil || p.Solved || r.elapsed == 0 {
		return nil
	}
	games, perf, id := r.games, service.Performance{TimeSpent: r.timeSpent(), Attempts: p.Attempts}, p.ID
	return func() tea.Msg {
		_, _ = games.UpdatePerformance(context.Background(), id, perf)
		return nil
	}
}

func (r *RoomScreen) load() tea.Cmd {
	games, id := r.games, r.gameID
	return func() tea.Msg {
		ctx := context.Background()
		g, err := games.GetGame(ctx, id)
		if err != nil {
			return roomLoadedMsg{Err: err}
		}
		puzzles, err := games.ListPuzzles(ctx, id)
		return roomLoadedMsg{Game: g, Puzzles: puzzles, Err: err}
	}
}

func (r *RoomScreen) generate() tea.Cmd {
	r.busy = "Something shifts in the dark..."
	games, id := r.games, r.gameID
	return func() tea.Msg {
		p, err := games.GeneratePuzzle(context.Background(), id)
		return puzzleReadyMsg{Puzzle: p, Err: err}
	}
}

// submit stores the time spent so far, then checks the answer, so the
// difficulty nudge on a correct answer sees the real solve time.
func (r *RoomScreen) submit() tea.Cmd {
	p := r.active()
	text := r.input.Value()
	if text == "" {
		return nil
	}
	r.busy = "Checking..."
	games, id := r.games, p.ID
	perf := service.Performance{TimeSpent: r.timeSpent(), Attempts: p.Attempts}
	return func() tea.Msg {
		ctx := context.Background()
		if _, err := games.UpdatePerformance(ctx, id, perf); err != nil {
			return checkedMsg{Err: err}
		}
		res, err := games.CheckAnswer(ctx, id, text)
		return checkedMsg{Result: res, Err: err}
	}
}

func (r *RoomScreen) finish() tea.Cmd {
	next := summary.New(r.games, r.gameID)
	replace := func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
	if save := r.saveTime(); save != nil {
		return tea.Sequence(save, replace)
	}
	return replace
}
