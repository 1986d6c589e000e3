// Package lobby is the client side of the game lobby HTTP API: it reports
// finished Card Flip runs and fetches the room leaderboard.
package lobby

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:10000"

var (
	// ErrMissingToken is returned when no bearer token is configured.
	ErrMissingToken = errors.New("lobby: missing access token")
	// ErrMissingRoom is returned when no room id is configured.
	ErrMissingRoom = errors.New("lobby: missing room id")
)

// Config carries everything the client needs. Nothing is read from the
// environment here; the caller resolves flags and env vars.
type Config struct {
	BaseURL string
	Token   string
	RoomID  string
	UserID  int64
	Timeout time.Duration
}

// FinishRequest is the body posted when a run is completed.
type FinishRequest struct {
	UserID       int64 `json:"userId"`
	FinishTime   int   `json:"finishTime"`
	MatchedPairs int   `json:"matchedPairs"`
	Score        int   `json:"score"`
}

// GameResult is the server-assigned outcome of a finished run.
// RankInRoom is 0 while the server has not ranked the run yet.
type GameResult struct {
	ID         int64 `json:"id,omitempty"`
	UserID     int64 `json:"userId,omitempty"`
	FinishTime int   `json:"finishTime"`
	RankInRoom int   `json:"rankInRoom,omitempty"`
	Score      int   `json:"score,omitempty"`
}

// ResultEntry is one row of the room leaderboard.
type ResultEntry struct {
	ID               int64  `json:"id,omitempty"`
	UserID           int64  `json:"userId"`
	FinishTime       int    `json:"finishTime"`
	RankInRoom       int    `json:"rankInRoom,omitempty"`
	UserNickname     string `json:"userNickname"`
	UserThumbnailURL string `json:"userThumbnailUrl,omitempty"`
	UserLevel        int    `json:"userLevel,omitempty"`
}

// envelope is the lobby API response wrapper.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Op   string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("lobby: %s: unexpected status %d: %s", e.Op, e.Code, e.Body)
	}
	return fmt.Sprintf("lobby: %s: unexpected status %d", e.Op, e.Code)
}

// Client talks to the lobby API for a single room.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a client. A nil httpClient uses a client with
// cfg.Timeout (10s when unset).
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg, http: httpClient}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) roomURL(suffix string) (string, error) {
	if c.cfg.Token == "" {
		return "", ErrMissingToken
	}
	if c.cfg.RoomID == "" {
		return "", ErrMissingRoom
	}
	return fmt.Sprintf("%s/private/game-rooms/%s/cardflip/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.RoomID), suffix), nil
}

// Finish posts a completed run and returns the server's result.
func (c *Client) Finish(ctx context.Context, req FinishRequest) (GameResult, error) {
	endpoint, err := c.roomURL("finish")
	if err != nil {
		return GameResult{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return GameResult{}, fmt.Errorf("lobby: encode finish request: %w", err)
	}

	var out envelope[GameResult]
	if err := c.do(ctx, "finish", http.MethodPost, endpoint, body, &out); err != nil {
		return GameResult{}, err
	}
	return out.Data, nil
}

// Results fetches the room leaderboard, ordered by rank.
func (c *Client) Results(ctx context.Context) ([]ResultEntry, error) {
	endpoint, err := c.roomURL("results")
	if err != nil {
		return nil, err
	}

	var out envelope[[]ResultEntry]
	if err := c.do(ctx, "results", http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	SortResults(out.Data)
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("lobby: %s: build request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lobby: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lobby: %s: decode response: %w", op, err)
	}
	return nil
}

// SortResults orders entries by rank, unranked entries last, then by
// finish time.
func SortResults(entries []ResultEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := entries[i].RankInRoom, entries[j].RankInRoom
		switch {
		case ri == rj:
			return entries[i].FinishTime < entries[j].FinishTime
		case ri == 0:
			return false
		case rj == 0:
			return true
		default:
			return ri < rj
		}
	})
}
