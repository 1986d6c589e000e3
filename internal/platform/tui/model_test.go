package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-cardflip/internal/config"
	"github.com/vovakirdan/tui-cardflip/internal/core"
	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
	"github.com/vovakirdan/tui-cardflip/internal/lobby"
	"github.com/vovakirdan/tui-cardflip/internal/storage"
)

var start = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	opts.Game = config.DefaultCardFlipConfig()
	opts.Runtime = core.RuntimeConfig{ScreenW: 80, ScreenH: 40, TickRate: 30, Seed: 42}
	return NewModel(opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return a Model")
	return out, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// solve matches every pair through the engine and ticks past each
// resolution, returning the time of the last tick.
func solve(t *testing.T, m Model, now time.Time) (Model, tea.Cmd, time.Time) {
	t.Helper()
	cards := m.game.Engine().Cards()
	used := make(map[int]bool)
	var cmd tea.Cmd
	for i := range cards {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(cards); j++ {
			if used[j] || !engine.IsPair(cards[i], cards[j]) {
				continue
			}
			used[i], used[j] = true, true
			require.True(t, m.game.Engine().Select(i, now))
			require.True(t, m.game.Engine().Select(j, now))
			now = now.Add(time.Second)
			m, cmd = update(t, m, TickMsg(now))
			break
		}
	}
	return m, cmd, now
}

func TestQuitWhenIdle(t *testing.T) {
	m := newTestModel(t, Options{})

	m, cmd := update(t, m, keyMsg("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestQuitConfirmationDuringSession(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, keyMsg(" "))
	m, _ = update(t, m, TickMsg(start))
	require.Equal(t, engine.StateActive, m.game.Engine().State())

	m, cmd := update(t, m, keyMsg("q"))
	assert.True(t, m.confirming)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Leave the game?")

	m, _ = update(t, m, keyMsg("n"))
	assert.False(t, m.confirming)
	assert.False(t, m.quitting)

	m, _ = update(t, m, keyMsg("q"))
	m, cmd = update(t, m, keyMsg("y"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
}

func TestEscClosesConfirmationOnly(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, keyMsg(" "))
	m, _ = update(t, m, TickMsg(start))

	m, cmd := update(t, m, keyMsg("esc"))
	assert.Nil(t, cmd)
	assert.False(t, m.confirming)
	assert.Empty(t, m.inputFrame.Actions)

	m, _ = update(t, m, keyMsg("q"))
	require.True(t, m.confirming)
	m, _ = update(t, m, keyMsg("esc"))
	assert.False(t, m.confirming)
	assert.False(t, m.quitting)
}

func TestCtrlCAlwaysQuits(t *testing.T) {
	m := newTestModel(t, Options{})
	m.confirming = true

	m, cmd := update(t, m, keyMsg("ctrl+c"))
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestKeysApplyOnNextTick(t *testing.T) {
	m := newTestModel(t, Options{})

	m, _ = update(t, m, keyMsg("d"))
	assert.Equal(t, 0, m.game.Cursor(), "input waits for the tick")

	m, _ = update(t, m, TickMsg(start))
	assert.Equal(t, 1, m.game.Cursor())

	m, _ = update(t, m, keyMsg("enter"))
	m, _ = update(t, m, TickMsg(start.Add(time.Second)))
	assert.True(t, m.game.Engine().Card(1).Flipped)
	assert.Equal(t, start.Add(time.Second), m.game.Engine().StartedAt(), "tick time starts the clock")
}

func TestResizeKeepsSession(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, keyMsg(" "))
	m, _ = update(t, m, TickMsg(start))
	gen := m.game.Engine().Generation()

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Equal(t, gen, m.game.Engine().Generation())
	assert.Equal(t, engine.StateActive, m.game.Engine().State())
	assert.Equal(t, 100, m.screen.Width())
}

func TestCompletionSavesRunLocally(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := newTestModel(t, Options{Store: store})
	m, cmd, _ := solve(t, m, start)

	require.NotNil(t, m.result)
	assert.True(t, m.gameState.GameOver)
	assert.False(t, m.result.pending, "no lobby means nothing is pending")
	assert.NotNil(t, cmd)

	run, err := store.RunBySession(m.SessionID())
	require.NoError(t, err)
	assert.Equal(t, m.result.completion.FinishTime, run.FinishTime)
	assert.Equal(t, m.result.completion.Score, run.Score)
	assert.Empty(t, run.RoomID)

	view := m.View()
	assert.Contains(t, view, "ALL PAIRS FOUND")
	assert.Contains(t, view, engine.FormatTime(run.FinishTime))
	assert.Contains(t, view, "Your best runs")
	assert.Contains(t, view, ownMarker)
	assert.NotContains(t, view, "EXP", "no EXP without a lobby result")
}

func TestRestartAfterCompletion(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _, now := solve(t, m, start)
	require.NotNil(t, m.result)
	oldSession := m.SessionID()
	oldGen := m.game.Engine().Generation()

	m, _ = update(t, m, keyMsg("r"))
	m, _ = update(t, m, TickMsg(now.Add(time.Second)))

	assert.Nil(t, m.result)
	assert.NotEqual(t, oldSession, m.SessionID())
	assert.NotEqual(t, oldGen, m.game.Engine().Generation())
	assert.Equal(t, engine.StateIdle, m.game.Engine().State())
	assert.False(t, m.gameState.GameOver)

	// A report for the previous session arriving late is dropped.
	m, _ = update(t, m, reportMsg{sessionID: oldSession, report: lobby.Report{Notice: lobby.FailureNotice}})
	assert.Nil(t, m.result)
}

func TestRestartIgnoredDuringSession(t *testing.T) {
	m := newTestModel(t, Options{})
	m, _ = update(t, m, keyMsg(" "))
	m, _ = update(t, m, TickMsg(start))
	session := m.SessionID()

	m, _ = update(t, m, keyMsg("r"))
	m, _ = update(t, m, TickMsg(start.Add(time.Second)))
	assert.Equal(t, session, m.SessionID())
	assert.Equal(t, engine.StateActive, m.game.Engine().State())
}

func newLobbyServer(t *testing.T, status int) (*httptest.Server, *int) {
	t.Helper()
	posts := new(int)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /private/game-rooms/{room}/cardflip/finish", func(w http.ResponseWriter, r *http.Request) {
		*posts++
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		var req lobby.FinishRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": lobby.GameResult{UserID: req.UserID, FinishTime: req.FinishTime, RankInRoom: 2}})
	})
	mux.HandleFunc("GET /private/game-rooms/{room}/cardflip/results", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []lobby.ResultEntry{
			{UserID: 1, FinishTime: 12, RankInRoom: 1, UserNickname: "ada"},
			{UserID: 7, FinishTime: 20, RankInRoom: 2, UserNickname: "me"},
			{UserID: 3, FinishTime: 45, UserNickname: "bo"},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, posts
}

func TestCompletionReportsToLobby(t *testing.T) {
	srv, posts := newLobbyServer(t, http.StatusOK)
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	client := lobby.NewClient(lobby.Config{BaseURL: srv.URL, Token: "tok", RoomID: "r1", UserID: 7}, srv.Client())
	m := newTestModel(t, Options{Store: store, Reporter: lobby.NewReporter(client, nil)})

	m, _, _ = solve(t, m, start)
	require.NotNil(t, m.result)
	assert.True(t, m.result.pending)
	assert.Contains(t, m.View(), "Saving result")

	msg := reportCmd(context.Background(), m.reporter, m.SessionID(), m.result.completion)()
	assert.Equal(t, 1, *posts)

	m, _ = update(t, m, msg)
	assert.False(t, m.result.pending)
	assert.Equal(t, 2, m.result.rank())

	view := m.View()
	assert.Contains(t, view, "#2")
	assert.Contains(t, view, "+150 EXP")
	assert.Contains(t, view, "Room leaderboard")
	assert.Contains(t, view, "ada")
	assert.Equal(t, 1, m.result.table.Cursor(), "own row is selected")

	rows := m.result.table.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "+200 EXP", rows[0][5])
	assert.Equal(t, "+150 EXP", rows[1][5])
	assert.Equal(t, "#3", rows[2][1], "unranked row shows its position")
	assert.Equal(t, "+50 EXP", rows[2][5])
	assert.Contains(t, view, "+200 EXP")

	run, err := store.RunBySession(m.SessionID())
	require.NoError(t, err)
	assert.Equal(t, "r1", run.RoomID)
	assert.Equal(t, 2, run.Rank)
}

func TestCompletionReportFailureShowsNotice(t *testing.T) {
	srv, _ := newLobbyServer(t, http.StatusInternalServerError)
	client := lobby.NewClient(lobby.Config{BaseURL: srv.URL, Token: "tok", RoomID: "r1", UserID: 7}, srv.Client())
	m := newTestModel(t, Options{Reporter: lobby.NewReporter(client, nil)})

	m, _, _ = solve(t, m, start)
	msg := reportCmd(context.Background(), m.reporter, m.SessionID(), m.result.completion)()
	m, _ = update(t, m, msg)

	view := m.View()
	assert.Contains(t, view, lobby.FailureNotice)
	assert.Contains(t, view, "ALL PAIRS FOUND", "completion stays local")
}

func TestCompletionWithoutTokenIsSilent(t *testing.T) {
	client := lobby.NewClient(lobby.Config{RoomID: "r1", UserID: 7}, nil)
	m := newTestModel(t, Options{Reporter: lobby.NewReporter(client, nil)})

	m, _, _ = solve(t, m, start)
	require.NotNil(t, m.result)
	assert.False(t, m.result.pending)
	assert.NotContains(t, m.View(), lobby.FailureNotice)
}
