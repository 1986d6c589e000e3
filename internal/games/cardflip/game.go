// Package cardflip implements the Card Flip memory game on top of the
// engine package: cursor navigation, input mapping and terminal rendering.
package cardflip

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-cardflip/internal/config"
	"github.com/vovakirdan/tui-cardflip/internal/core"
	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

// ID is the game identifier used for storage and logs.
const ID = "cardflip"

// Game wraps an engine session with a cursor and a renderer.
type Game struct {
	cfg config.CardFlipConfig
	eng *engine.Engine
	rng *rand.Rand

	cursor int
	tick   uint64

	screenW  int
	screenH  int
	tooSmall bool
}

// New creates a game with the given configuration.
// Reset must be called before the first Step.
func New(cfg config.CardFlipConfig) *Game {
	return &Game{cfg: cfg}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Card Flip"
}

// Reset deals a fresh deck and starts a new session.
// Anything still pending from the previous session is invalidated.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g.rng = rand.New(rand.NewSource(seed))

	deck, err := engine.NewDeck(g.cfg.Deck, g.rng)
	if err != nil {
		// Config is validated on load; fall back to the built-in deck.
		deck, _ = engine.NewDeck(engine.DefaultSource(), g.rng)
	}

	if g.eng == nil {
		g.eng = engine.New(deck, g.cfg.Timing.Engine())
	} else {
		g.eng.Reset(deck)
	}

	g.cursor = 0
	g.tick = 0
	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the layout without touching the session.
func (g *Game) Resize(width, height int) {
	g.screenW = width
	g.screenH = height
	minW, minH := g.minSize()
	g.tooSmall = width < minW || height < minH
}

// Step applies one tick of input at time now and advances pending
// resolutions and the clock.
func (g *Game) Step(in core.InputFrame, now time.Time) core.StepResult {
	g.tick++

	if !g.tooSmall {
		g.moveCursor(in)
		if in.Has(core.ActionConfirm) {
			g.eng.Select(g.cursor, now)
		}
	}

	g.eng.Advance(now)
	return core.StepResult{State: g.State()}
}

// moveCursor moves the cursor one card, wrapping around the board edges.
func (g *Game) moveCursor(in core.InputFrame) {
	cols := g.cfg.Board.Columns
	rows := g.cfg.Board.Rows()
	x, y := g.cursor%cols, g.cursor/cols

	switch {
	case in.Has(core.ActionLeft):
		x = (x - 1 + cols) % cols
	case in.Has(core.ActionRight):
		x = (x + 1) % cols
	case in.Has(core.ActionUp):
		y = (y - 1 + rows) % rows
	case in.Has(core.ActionDown):
		y = (y + 1) % rows
	}
	g.cursor = y*cols + x
}

// State returns the platform-facing state. Score is only meaningful once
// the session is over.
func (g *Game) State() core.GameState {
	st := core.GameState{Paused: g.tooSmall}
	if g.eng.State() == engine.StateCompleted {
		st.GameOver = true
		st.Score = engine.Score(g.eng.Elapsed())
	}
	return st
}

// Cursor returns the index of the card under the cursor.
func (g *Game) Cursor() int {
	return g.cursor
}

// Engine exposes the session for read access.
func (g *Game) Engine() *engine.Engine {
	return g.eng
}

// TakeCompletion returns the session's completion once, when it happens.
func (g *Game) TakeCompletion() (engine.Completion, bool) {
	return g.eng.TakeCompletion()
}
