package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
	"github.com/vovakirdan/tui-cardflip/internal/lobby"
	"github.com/vovakirdan/tui-cardflip/internal/storage"
)

const (
	maxBoardRows = 10 // Visible leaderboard rows
	ownMarker    = "▶"
)

// resultScreen is everything shown after a session completes.
type resultScreen struct {
	completion engine.Completion
	sessionID  uuid.UUID

	pending bool          // Lobby report still in flight
	report  *lobby.Report // Nil until the report returns
	local   []storage.Run // Local best runs, used when nothing came from the lobby

	table table.Model
}

func newResultScreen(c engine.Completion, sessionID uuid.UUID, pending bool) resultScreen {
	return resultScreen{completion: c, sessionID: sessionID, pending: pending}
}

// rank returns the server rank, 0 while unknown.
func (r resultScreen) rank() int {
	if r.report == nil || r.report.Result == nil {
		return 0
	}
	return r.report.Result.RankInRoom
}

// finishTime prefers the time the server recorded over the local one.
func (r resultScreen) finishTime() int {
	if r.report != nil && r.report.Result != nil && r.report.Result.FinishTime > 0 {
		return r.report.Result.FinishTime
	}
	return r.completion.FinishTime
}

// notice returns the single failure message, if any.
func (r resultScreen) notice() string {
	if r.report == nil {
		return ""
	}
	return r.report.Notice
}

// setReport stores the lobby outcome and rebuilds the table around it.
func (r *resultScreen) setReport(rep lobby.Report, userID int64, height int) {
	r.pending = false
	r.report = &rep
	r.rebuild(userID, height)
}

// setLocal stores local history and rebuilds the table if the lobby has no board.
func (r *resultScreen) setLocal(runs []storage.Run, userID int64, height int) {
	r.local = runs
	r.rebuild(userID, height)
}

func (r *resultScreen) rebuild(userID int64, height int) {
	if r.report != nil && len(r.report.Leaderboard) > 0 {
		r.table = leaderboardTable(r.report.Leaderboard, userID, height)
		return
	}
	if len(r.local) > 0 {
		r.table = historyTable(r.local, r.sessionID, height)
		return
	}
	r.table = table.Model{}
}

func (r resultScreen) hasTable() bool {
	return len(r.table.Rows()) > 0
}

// leaderboardTable lists the room results with the player's row selected.
func leaderboardTable(entries []lobby.ResultEntry, userID int64, height int) table.Model {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Rank", Width: 5},
		{Title: "Player", Width: 18},
		{Title: "Lv", Width: 4},
		{Title: "Time", Width: 6},
		{Title: "EXP", Width: 9},
	}

	own := -1
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		marker := ""
		if userID != 0 && e.UserID == userID {
			marker = ownMarker
			own = i
		}
		level := ""
		if e.UserLevel > 0 {
			level = fmt.Sprintf("%d", e.UserLevel)
		}
		rows[i] = table.Row{
			marker,
			fmt.Sprintf("#%d", displayRank(e, i)),
			e.UserNickname,
			level,
			engine.FormatTime(e.FinishTime),
			fmt.Sprintf("+%d EXP", engine.ExpGain(e.RankInRoom)),
		}
	}

	return newTable(columns, rows, own, height)
}

// displayRank is the server rank, or the row position for unranked rows.
// Unranked rows sort last, so the position never collides with a real rank.
func displayRank(e lobby.ResultEntry, i int) int {
	if e.RankInRoom > 0 {
		return e.RankInRoom
	}
	return i + 1
}

// historyTable lists local best runs with the current session selected.
func historyTable(runs []storage.Run, sessionID uuid.UUID, height int) table.Model {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "#", Width: 4},
		{Title: "Time", Width: 6},
		{Title: "Score", Width: 6},
		{Title: "Date", Width: 13},
	}

	own := -1
	rows := make([]table.Row, len(runs))
	for i, run := range runs {
		marker := ""
		if run.SessionID == sessionID {
			marker = ownMarker
			own = i
		}
		rows[i] = table.Row{
			marker,
			fmt.Sprintf("%d", i+1),
			engine.FormatTime(run.FinishTime),
			fmt.Sprintf("%d", run.Score),
			run.CreatedAt.Local().Format("Jan 02 15:04"),
		}
	}

	return newTable(columns, rows, own, height)
}

func newTable(columns []table.Column, rows []table.Row, selected, height int) table.Model {
	// Header row plus its bottom border.
	h := min(len(rows), maxBoardRows, max(height, 3)) + 2
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(h),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	if selected < 0 {
		s.Selected = lipgloss.NewStyle()
	}
	t.SetStyles(s)

	if selected >= 0 {
		t.SetCursor(selected)
	}
	return t
}

// view renders the result panel.
func (r resultScreen) view(help string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ALL PAIRS FOUND"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Time  "))
	b.WriteString(valueStyle.Render(engine.FormatTime(r.finishTime())))
	b.WriteString(labelStyle.Render("   Score  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", r.completion.Score)))
	b.WriteString("\n")

	switch {
	case r.pending:
		b.WriteString(mutedStyle.Render("Saving result…"))
		b.WriteString("\n")
	case r.report != nil && r.report.Result != nil:
		rank := r.rank()
		b.WriteString(labelStyle.Render("Rank  "))
		if rank > 0 {
			b.WriteString(valueStyle.Render(fmt.Sprintf("#%d", rank)))
		} else {
			b.WriteString(mutedStyle.Render("calculating…"))
		}
		b.WriteString("   ")
		b.WriteString(expStyle.Render(fmt.Sprintf("+%d EXP", engine.ExpGain(rank))))
		b.WriteString("\n")
	}

	if n := r.notice(); n != "" {
		b.WriteString("\n")
		b.WriteString(noticeStyle.Render(n))
		b.WriteString("\n")
	}

	if r.hasTable() {
		title := "Your best runs"
		if r.report != nil && len(r.report.Leaderboard) > 0 {
			title = "Room leaderboard"
		}
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(title))
		b.WriteString("\n")
		b.WriteString(r.table.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))

	return panelStyle.Render(b.String())
}
