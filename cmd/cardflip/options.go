package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-cardflip/internal/lobby"
)

// options holds the flags shared by every command.
type options struct {
	fps        int
	seed       int64
	dbPath     string
	configPath string
	verbose    bool

	apiURL string
	token  string
	room   string
	userID int64
}

// lobbyConfig returns the lobby client configuration from the flags.
func (o *options) lobbyConfig() lobby.Config {
	return lobby.Config{
		BaseURL: o.apiURL,
		Token:   o.token,
		RoomID:  o.room,
		UserID:  o.userID,
	}
}

// newLogger creates a stderr logger for non-interactive commands.
func (o *options) newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if o.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newTUILogger creates the logger used while the alt screen is active.
// Without --verbose it discards everything; with it, it appends to a file
// next to the database.
func (o *options) newTUILogger() (*log.Logger, io.Closer, error) {
	if !o.verbose {
		return log.New(io.Discard), io.NopCloser(nil), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot get home directory: %w", err)
	}
	dir := filepath.Join(home, ".cardflip")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "cardflip.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "cardflip",
		Level:           log.DebugLevel,
	})
	return logger, f, nil
}
