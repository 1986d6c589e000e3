package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-cardflip/internal/config"
	"github.com/vovakirdan/tui-cardflip/internal/core"
	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip"
	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
	"github.com/vovakirdan/tui-cardflip/internal/lobby"
	"github.com/vovakirdan/tui-cardflip/internal/storage"
)

// reportTimeout bounds a single lobby report, finish and leaderboard together.
const reportTimeout = 20 * time.Second

// Options configures a Model. Store, Reporter and Logger are optional.
type Options struct {
	Game     config.CardFlipConfig
	Runtime  core.RuntimeConfig
	Store    *storage.Store
	Reporter *lobby.Reporter
	Logger   *log.Logger

	// Context scopes lobby reports; cancelled reports come back as a notice.
	Context context.Context
}

// reportMsg carries the lobby outcome for one session.
type reportMsg struct {
	sessionID uuid.UUID
	report    lobby.Report
}

// Model is the Bubble Tea model for a Card Flip session.
type Model struct {
	game     *cardflip.Game
	screen   *core.Screen
	store    *storage.Store
	reporter *lobby.Reporter
	logger   *log.Logger
	ctx      context.Context
	config   core.RuntimeConfig
	keys     KeyMap
	help     help.Model

	inputFrame core.InputFrame
	gameState  core.GameState
	sessionID  uuid.UUID
	result     *resultScreen // Set once the session completes
	confirming bool          // Leave confirmation is open
	quitting   bool
}

// NewModel creates a model with a freshly dealt session.
func NewModel(opts Options) Model {
	cfg := opts.Runtime
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	game := cardflip.New(opts.Game)
	game.Reset(cfg)

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      opts.Store,
		reporter:   opts.Reporter,
		logger:     logger,
		ctx:        ctx,
		config:     cfg,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		inputFrame: core.NewInputFrame(),
		sessionID:  uuid.New(),
	}
	m.help.Width = cfg.ScreenW
	m.gameState = game.State()
	return m
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	m.logger.Debug("session dealt", "session", m.sessionID, "seed", m.config.Seed)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		return m.handleTick(time.Time(msg))

	case reportMsg:
		return m.handleReport(msg)
	}

	return m, nil
}

// handleKey processes keyboard input. Game actions are buffered until the
// next tick so every input is applied at a tick timestamp.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Abort) {
		return m.quit()
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Yes):
			m.logger.Info("session abandoned", "session", m.sessionID, "elapsed", m.game.Engine().Elapsed())
			return m.quit()
		case key.Matches(msg, m.keys.No):
			m.confirming = false
		}
		return m, nil
	}

	if m.result != nil {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Restart):
			m.inputFrame.Set(core.ActionRestart)
		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			var cmd tea.Cmd
			m.result.table, cmd = m.result.table.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch action := m.keys.MapKey(msg); action {
	case core.ActionNone:
	case core.ActionQuit:
		if m.game.Engine().State() == engine.StateActive {
			m.confirming = true
			return m, nil
		}
		return m.quit()
	default:
		m.inputFrame.Set(action)
	}

	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleResize keeps the session and only relayouts.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	m.game.Resize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	if m.result != nil {
		m.result.rebuild(m.reporter.Config().UserID, m.tableHeight())
	}
	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) && m.gameState.GameOver {
		m.restart(now)
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame, now)
	m.gameState = result.State
	m.inputFrame.Clear()

	cmds := []tea.Cmd{tickCmd(m.config.TickRate)}
	if c, ok := m.game.TakeCompletion(); ok {
		if cmd := m.complete(c, now); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// restart deals a new deck under a new session id. Reports still in flight
// for the old session are dropped when they arrive.
func (m *Model) restart(now time.Time) {
	m.config.Seed = now.UnixNano()
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	m.sessionID = uuid.New()
	m.result = nil
	m.inputFrame.Clear()
	m.logger.Debug("session dealt", "session", m.sessionID, "seed", m.config.Seed)
}

// complete records a finished session locally and starts the lobby report.
func (m *Model) complete(c engine.Completion, now time.Time) tea.Cmd {
	m.logger.Info("session complete",
		"session", m.sessionID,
		"finish_time", c.FinishTime,
		"score", c.Score,
	)

	lobbyCfg := m.reporter.Config()
	enabled := m.reporter.Enabled()
	rs := newResultScreen(c, m.sessionID, enabled)
	m.result = &rs

	if m.store != nil {
		run := storage.Run{
			SessionID:  m.sessionID,
			FinishTime: c.FinishTime,
			Score:      c.Score,
			CreatedAt:  now,
		}
		if enabled {
			run.RoomID = lobbyCfg.RoomID
		}
		if _, err := m.store.SaveRun(run); err != nil {
			m.logger.Warn("could not save run", "session", m.sessionID, "error", err)
		}
		if runs, err := m.store.BestRuns(maxBoardRows); err == nil {
			m.result.setLocal(runs, lobbyCfg.UserID, m.tableHeight())
		} else {
			m.logger.Warn("could not load best runs", "error", err)
		}
	}

	if !enabled {
		return nil
	}
	return reportCmd(m.ctx, m.reporter, m.sessionID, c)
}

// reportCmd sends the completion off the update loop.
func reportCmd(ctx context.Context, r *lobby.Reporter, sessionID uuid.UUID, c engine.Completion) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, reportTimeout)
		defer cancel()
		return reportMsg{sessionID: sessionID, report: r.Report(ctx, c)}
	}
}

// handleReport applies a lobby outcome to the session it belongs to.
func (m Model) handleReport(msg reportMsg) (tea.Model, tea.Cmd) {
	if m.result == nil || msg.sessionID != m.sessionID {
		m.logger.Debug("dropping report for a finished session", "session", msg.sessionID)
		return m, nil
	}

	m.result.setReport(msg.report, m.reporter.Config().UserID, m.tableHeight())

	if res := msg.report.Result; res != nil && res.RankInRoom > 0 && m.store != nil {
		if err := m.store.SetRank(m.sessionID, res.RankInRoom); err != nil {
			m.logger.Warn("could not save rank", "session", m.sessionID, "error", err)
		}
	}
	return m, nil
}

// tableHeight is the number of leaderboard rows that fit under the result summary.
func (m Model) tableHeight() int {
	return max(m.config.ScreenH-18, 3)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch {
	case m.confirming:
		return m.overlay(m.confirmView())
	case m.result != nil:
		return m.overlay(m.result.view(m.help.View(m.keys.resultHelp())))
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// overlay centers a panel on the screen.
func (m Model) overlay(panel string) string {
	return lipgloss.Place(m.config.ScreenW, m.config.ScreenH, lipgloss.Center, lipgloss.Center, panel)
}

func (m Model) confirmView() string {
	body := titleStyle.Render("Leave the game?") + "\n\n" +
		labelStyle.Render("The clock keeps running and this run will not count.") + "\n\n" +
		helpStyle.Render(m.help.View(m.keys.confirmHelp()))
	return panelStyle.Render(body)
}

// SessionID returns the id of the current session.
func (m Model) SessionID() uuid.UUID {
	return m.sessionID
}

// Run starts the Bubble Tea program with a model built from opts.
func Run(opts Options) error {
	p := tea.NewProgram(
		NewModel(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
