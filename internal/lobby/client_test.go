package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

// fakeLobby records finish requests and serves a fixed leaderboard.
type fakeLobby struct {
	finishes      []FinishRequest
	auth          []string
	finishStatus  int
	resultsStatus int
	rank          int
	board         []ResultEntry
}

func (f *fakeLobby) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /private/game-rooms/{room}/cardflip/finish", func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "room 7", r.PathValue("room"))

		if f.finishStatus != 0 {
			http.Error(w, "nope", f.finishStatus)
			return
		}

		var req FinishRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.finishes = append(f.finishes, req)

		writeJSON(w, map[string]any{"data": GameResult{
			UserID:     req.UserID,
			FinishTime: req.FinishTime,
			RankInRoom: f.rank,
			Score:      req.Score,
		}})
	})
	mux.HandleFunc("GET /private/game-rooms/{room}/cardflip/results", func(w http.ResponseWriter, r *http.Request) {
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		if f.resultsStatus != 0 {
			w.WriteHeader(f.resultsStatus)
			return
		}
		writeJSON(w, map[string]any{"data": f.board})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeLobby, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/"
	return NewClient(cfg, srv.Client())
}

var testCfg = Config{Token: "tok", RoomID: "room 7", UserID: 42}

func TestClientFinish(t *testing.T) {
	f := &fakeLobby{rank: 2}
	c := newTestClient(t, f, testCfg)

	res, err := c.Finish(context.Background(), FinishRequest{UserID: 42, FinishTime: 37, MatchedPairs: 10, Score: 630})
	require.NoError(t, err)

	assert.Equal(t, 37, res.FinishTime)
	assert.Equal(t, 2, res.RankInRoom)
	require.Len(t, f.finishes, 1)
	assert.Equal(t, FinishRequest{UserID: 42, FinishTime: 37, MatchedPairs: 10, Score: 630}, f.finishes[0])
	assert.Equal(t, []string{"Bearer tok"}, f.auth)
}

func TestClientFinishStatusError(t *testing.T) {
	f := &fakeLobby{finishStatus: http.StatusUnauthorized}
	c := newTestClient(t, f, testCfg)

	_, err := c.Finish(context.Background(), FinishRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	assert.Equal(t, "finish", se.Op)
	assert.Contains(t, se.Error(), "nope")
}

func TestClientRequiresCredentials(t *testing.T) {
	f := &fakeLobby{}

	c := newTestClient(t, f, Config{RoomID: "room 7"})
	_, err := c.Finish(context.Background(), FinishRequest{})
	assert.ErrorIs(t, err, ErrMissingToken)

	c = newTestClient(t, f, Config{Token: "tok"})
	_, err = c.Results(context.Background())
	assert.ErrorIs(t, err, ErrMissingRoom)

	assert.Empty(t, f.auth, "no request should be sent without credentials")
}

func TestClientResultsSorted(t *testing.T) {
	f := &fakeLobby{board: []ResultEntry{
		{UserID: 3, FinishTime: 80, UserNickname: "late"},
		{UserID: 2, FinishTime: 50, RankInRoom: 2, UserNickname: "second"},
		{UserID: 1, FinishTime: 30, RankInRoom: 1, UserNickname: "first", UserLevel: 4},
	}}
	c := newTestClient(t, f, testCfg)

	board, err := c.Results(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "first", board[0].UserNickname)
	assert.Equal(t, 4, board[0].UserLevel)
	assert.Equal(t, "second", board[1].UserNickname)
	assert.Equal(t, "late", board[2].UserNickname)
}

func TestClientDefaults(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.Equal(t, DefaultBaseURL, c.Config().BaseURL)
	assert.Positive(t, c.Config().Timeout)
}

func TestReporterReport(t *testing.T) {
	f := &fakeLobby{rank: 1, board: []ResultEntry{{UserID: 42, FinishTime: 20, RankInRoom: 1, UserNickname: "me"}}}
	r := NewReporter(newTestClient(t, f, testCfg), log.New(io.Discard))

	c := engine.Completion{FinishTime: 20, MatchedPairs: 10, Score: engine.Score(20)}
	rep := r.Report(context.Background(), c)

	require.NoError(t, rep.Err)
	assert.False(t, rep.Skipped)
	assert.Empty(t, rep.Notice)
	require.NotNil(t, rep.Result)
	assert.Equal(t, 1, rep.Result.RankInRoom)
	assert.Len(t, rep.Leaderboard, 1)

	require.Len(t, f.finishes, 1)
	assert.Equal(t, FinishRequest{UserID: 42, FinishTime: 20, MatchedPairs: 10, Score: 800}, f.finishes[0])
}

func TestReporterSkipsWithoutCredentials(t *testing.T) {
	f := &fakeLobby{}
	for _, cfg := range []Config{
		{RoomID: "room 7", UserID: 42},
		{Token: "tok", UserID: 42},
		{Token: "tok", RoomID: "room 7"},
	} {
		r := NewReporter(newTestClient(t, f, cfg), log.New(io.Discard))
		rep := r.Report(context.Background(), engine.Completion{MatchedPairs: 10})
		assert.True(t, rep.Skipped)
		assert.Empty(t, rep.Notice, "missing credentials are silent")
	}
	assert.Empty(t, f.auth)

	var nilReporter *Reporter
	assert.False(t, nilReporter.Enabled())
	assert.True(t, NewReporter(nil, nil).Report(context.Background(), engine.Completion{}).Skipped)
}

func TestReporterFailureIsSingleNotice(t *testing.T) {
	f := &fakeLobby{finishStatus: http.StatusInternalServerError}
	r := NewReporter(newTestClient(t, f, testCfg), log.New(io.Discard))

	rep := r.Report(context.Background(), engine.Completion{MatchedPairs: 10})
	assert.Equal(t, FailureNotice, rep.Notice)
	assert.Error(t, rep.Err)
	assert.Nil(t, rep.Result)
	assert.Len(t, f.auth, 1, "failed attempts are not retried")
}

func TestReporterLeaderboardFailureKeepsResult(t *testing.T) {
	f := &fakeLobby{rank: 3, resultsStatus: http.StatusBadGateway}
	r := NewReporter(newTestClient(t, f, testCfg), log.New(io.Discard))

	rep := r.Report(context.Background(), engine.Completion{FinishTime: 9, MatchedPairs: 10})
	require.NotNil(t, rep.Result)
	assert.Equal(t, 3, rep.Result.RankInRoom)
	assert.Equal(t, FailureNotice, rep.Notice)

	var se *StatusError
	assert.True(t, errors.As(rep.Err, &se))
}

func TestReporterCancelledContext(t *testing.T) {
	f := &fakeLobby{}
	r := NewReporter(newTestClient(t, f, testCfg), log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := r.Report(ctx, engine.Completion{MatchedPairs: 10})
	assert.ErrorIs(t, rep.Err, context.Canceled)
	assert.Equal(t, FailureNotice, rep.Notice)
}
