// Package config provides YAML-based configuration for the Card Flip game:
// resolution pacing, board layout and deck content.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

// CardFlipConfig contains all configuration for the Card Flip game.
type CardFlipConfig struct {
	Timing TimingConfig  `yaml:"timing"`
	Board  BoardConfig   `yaml:"board"`
	Deck   engine.Source `yaml:"deck"`
}

// TimingConfig defines pair resolution pacing, in milliseconds.
type TimingConfig struct {
	MatchDelayMS  int `yaml:"match_delay_ms"`
	ShakeDelayMS  int `yaml:"shake_delay_ms"`
	RevertDelayMS int `yaml:"revert_delay_ms"`
	TickUnitMS    int `yaml:"tick_unit_ms"`
}

// BoardConfig defines how the deck is laid out on screen.
type BoardConfig struct {
	Columns    int `yaml:"columns"`     // Cards per row; must divide the deck size
	CardWidth  int `yaml:"card_width"`  // Including borders
	CardHeight int `yaml:"card_height"` // Including borders
}

// Rows returns the number of card rows.
func (b BoardConfig) Rows() int {
	return engine.DeckSize / b.Columns
}

// Engine converts the timing section to engine pacing.
func (t TimingConfig) Engine() engine.Timing {
	return engine.Timing{
		MatchDelay:  time.Duration(t.MatchDelayMS) * time.Millisecond,
		ShakeDelay:  time.Duration(t.ShakeDelayMS) * time.Millisecond,
		RevertDelay: time.Duration(t.RevertDelayMS) * time.Millisecond,
		TickUnit:    time.Duration(t.TickUnitMS) * time.Millisecond,
	}
}

// Validate checks the configuration for values the game cannot run with.
func (c CardFlipConfig) Validate() error {
	var errs []error

	t := c.Timing
	if t.MatchDelayMS < 0 || t.ShakeDelayMS < 0 || t.RevertDelayMS < 0 {
		errs = append(errs, errors.New("timing: delays must not be negative"))
	}
	if t.RevertDelayMS < t.ShakeDelayMS {
		errs = append(errs, fmt.Errorf("timing: revert_delay_ms (%d) must not precede shake_delay_ms (%d)", t.RevertDelayMS, t.ShakeDelayMS))
	}
	if t.TickUnitMS <= 0 {
		errs = append(errs, errors.New("timing: tick_unit_ms must be positive"))
	}

	b := c.Board
	if b.Columns <= 0 || engine.DeckSize%b.Columns != 0 {
		errs = append(errs, fmt.Errorf("board: columns must divide %d, got %d", engine.DeckSize, b.Columns))
	}
	if b.CardWidth < 5 || b.CardHeight < 3 {
		errs = append(errs, fmt.Errorf("board: card must be at least 5x3, got %dx%d", b.CardWidth, b.CardHeight))
	}

	if err := c.Deck.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("deck: %w", err))
	}

	return errors.Join(errs...)
}
