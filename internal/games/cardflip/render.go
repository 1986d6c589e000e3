package cardflip

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/tui-cardflip/internal/core"
	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

const (
	hudHeight    = 2
	detailHeight = 4
)

// imageGlyphs gives each image pair a symbol, indexed by image id.
var imageGlyphs = []rune{'?', '★', '♥', '♦', '♣', '♠', '●', '▲', '■'}

var imageColors = []core.Color{
	core.ColorDefault,
	core.ColorBrightYellow,
	core.ColorBrightRed,
	core.ColorMagenta,
	core.ColorBrightGreen,
	core.ColorBlue,
	core.ColorOrange,
}

func (g *Game) minSize() (int, int) {
	b := g.cfg.Board
	return b.Columns * b.CardWidth, hudHeight + b.Rows()*b.CardHeight + detailHeight
}

// Render draws the HUD, the board and the detail panel.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	b := g.cfg.Board
	boardW := b.Columns * b.CardWidth
	boardX := (g.screenW - boardW) / 2

	g.renderHUD(dst, boardX, boardW)

	cards := g.eng.Cards()
	for i := range cards {
		x := boardX + (i%b.Columns)*b.CardWidth
		y := hudHeight + (i/b.Columns)*b.CardHeight
		g.renderCard(dst, core.NewRect(x, y, b.CardWidth, b.CardHeight), cards[i], i == g.cursor)
	}

	g.renderDetail(dst, boardX, hudHeight+b.Rows()*b.CardHeight, boardW)
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	minW, minH := g.minSize()
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small", core.ColorBrightRed)
	dst.DrawTextCentered(y+1, fmt.Sprintf("Need at least %dx%d", minW, minH), core.ColorGray)
}

// renderHUD draws the timer, the title and the progress counter.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	title := g.Title()
	dst.DrawText(boardX+(boardW-len(title))/2, 0, title, core.ColorBrightCyan)

	dst.DrawText(boardX, 1, "⏱ "+engine.FormatTime(g.eng.Elapsed()), core.ColorCyan)

	progress := fmt.Sprintf("matched %d / %d", g.eng.MatchedPairs(), engine.TotalPairs)
	dst.DrawText(boardX+boardW-len(progress), 1, progress, core.ColorWhite)

	var status string
	switch g.eng.State() {
	case engine.StateIdle:
		status = "flip a card to start"
	case engine.StateCompleted:
		status = "complete!"
	}
	if status != "" {
		dst.DrawText(boardX+(boardW-len(status))/2, 1, status, core.ColorYellow)
	}
}

// renderCard draws a single card into r.
func (g *Game) renderCard(dst *core.Screen, r core.Rect, c engine.Card, selected bool) {
	// Shaking cards jitter sideways every few ticks.
	if c.Shaking && (g.tick/3)%2 == 0 {
		r.X++
	}

	border := core.ColorGray
	switch {
	case selected:
		border = core.ColorBrightYellow
	case c.Shaking:
		border = core.ColorRed
	case c.Matched:
		border = core.ColorGreen
	}

	box := core.NewRect(r.X, r.Y, r.W-1, r.H) // one column gap between cards
	dst.DrawBox(box, border)
	inner := core.NewRect(box.X+1, box.Y+1, box.W-2, box.H-2)

	if !c.FaceUp() {
		dst.FillRect(inner, '░', core.ColorGray)
		return
	}

	lines, color := cardFace(c)
	if c.Matched && !selected {
		color = core.ColorGreen
	}
	for i := 0; i < inner.H && i < len(lines); i++ {
		dst.DrawText(inner.X, inner.Y+i, truncate(lines[i], inner.W), color)
	}
}

// cardFace returns the visible text of a face-up card.
func cardFace(c engine.Card) ([]string, core.Color) {
	switch c.Type {
	case engine.CardProblem:
		return append([]string{"Q?"}, strings.Split(c.Content, "\n")...), core.ColorCyan
	case engine.CardAnswer:
		return []string{"A:", c.Content}, core.ColorBrightCyan
	default:
		glyph := imageGlyphs[0]
		if c.ImageID > 0 && c.ImageID < len(imageGlyphs) {
			glyph = imageGlyphs[c.ImageID]
		}
		color := core.ColorWhite
		if c.ImageID > 0 && c.ImageID < len(imageColors) {
			color = imageColors[c.ImageID]
		}
		name := strings.TrimSuffix(c.Image, ".svg")
		return []string{fmt.Sprintf("  %c %c %c", glyph, glyph, glyph), "   " + name}, color
	}
}

// renderDetail shows the full text of the problem under the cursor, or the
// controls when there is nothing to show.
func (g *Game) renderDetail(dst *core.Screen, x, y, w int) {
	c := g.eng.Card(g.cursor)
	if c.FaceUp() && c.Type == engine.CardProblem {
		for i, line := range strings.Split(c.Content, "\n") {
			if i >= detailHeight {
				break
			}
			dst.DrawText(x, y+i, truncate(line, w), core.ColorCyan)
		}
		return
	}

	hint := "arrows/wasd move · space flip · q quit"
	if g.eng.State() == engine.StateCompleted {
		hint = "r new deck · q quit"
	}
	dst.DrawText(x+(w-len([]rune(hint)))/2, y+1, hint, core.ColorGray)
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 1 {
		return string(rs[:max(n, 0)])
	}
	return string(rs[:n-1]) + "…"
}
