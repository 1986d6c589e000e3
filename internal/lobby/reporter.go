package lobby

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

// FailureNotice is the single message shown to the player when reporting fails.
const FailureNotice = "Could not save your result. Your run still counts locally."

// Report is the outcome of handing a completion to the lobby.
type Report struct {
	Completion  engine.Completion
	Skipped     bool // No credentials or room; nothing was sent
	Result      *GameResult
	Leaderboard []ResultEntry
	Notice      string // User-facing message when something failed
	Err         error
}

// Reporter posts completions and fetches the resulting leaderboard.
// Attempts are never retried.
type Reporter struct {
	client *Client
	logger *log.Logger
}

// NewReporter creates a reporter. A nil client makes every report skip.
func NewReporter(client *Client, logger *log.Logger) *Reporter {
	if logger == nil {
		logger = log.Default()
	}
	return &Reporter{client: client, logger: logger}
}

// Config returns the client configuration, or the zero Config when there
// is no client.
func (r *Reporter) Config() Config {
	if r == nil || r.client == nil {
		return Config{}
	}
	return r.client.Config()
}

// Enabled reports whether completions will actually be sent.
func (r *Reporter) Enabled() bool {
	cfg := r.Config()
	return cfg.Token != "" && cfg.RoomID != "" && cfg.UserID != 0
}

// Report sends c to the lobby. The local session is already complete; a
// failure here only produces a notice.
func (r *Reporter) Report(ctx context.Context, c engine.Completion) Report {
	rep := Report{Completion: c}
	if !r.Enabled() {
		rep.Skipped = true
		return rep
	}

	cfg := r.client.Config()
	result, err := r.client.Finish(ctx, FinishRequest{
		UserID:       cfg.UserID,
		FinishTime:   c.FinishTime,
		MatchedPairs: c.MatchedPairs,
		Score:        c.Score,
	})
	if err != nil {
		return r.fail(rep, "finish", err)
	}
	rep.Result = &result
	r.logger.Info("result saved",
		"room", cfg.RoomID,
		"finish_time", result.FinishTime,
		"rank", result.RankInRoom,
	)

	board, err := r.client.Results(ctx)
	if err != nil {
		return r.fail(rep, "results", err)
	}
	rep.Leaderboard = board
	return rep
}

func (r *Reporter) fail(rep Report, op string, err error) Report {
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrMissingRoom) {
		rep.Skipped = true
		return rep
	}
	r.logger.Error("lobby report failed", "op", op, "error", err)
	rep.Err = err
	rep.Notice = FailureNotice
	return rep
}
