package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
	"github.com/vovakirdan/tui-cardflip/internal/lobby"
)

func newResultsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show a lobby room leaderboard",
		Long: `Fetch the Card Flip results of a lobby room.

Requires --token and --room (or CARDFLIP_TOKEN and CARDFLIP_ROOM).
With --user, your own row is marked.

Examples:
  cardflip results --room 12
  CARDFLIP_API_URL=https://lobby.example.com cardflip results --room 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := opts.newLogger("lobby")
			client := lobby.NewClient(opts.lobbyConfig(), nil)

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			entries, err := client.Results(ctx)
			if err != nil {
				return err
			}
			logger.Debug("fetched results", "room", opts.room, "entries", len(entries))

			printResults(cmd.OutOrStdout(), opts.room, entries, opts.userID)
			return nil
		},
	}
}

func printResults(w io.Writer, room string, entries []lobby.ResultEntry, userID int64) {
	fmt.Fprintf(w, "Card Flip - room %s\n\n", room)

	if len(entries) == 0 {
		fmt.Fprintln(w, "Nobody has finished yet.")
		return
	}

	fmt.Fprintf(w, "  %-1s %-5s  %-20s  %-4s  %-6s  %s\n", "", "Rank", "Player", "Lv", "Time", "EXP")
	fmt.Fprintf(w, "  %-1s %-5s  %-20s  %-4s  %-6s  %s\n", "", "----", "------", "--", "----", "---")
	for i, e := range entries {
		marker := " "
		if userID != 0 && e.UserID == userID {
			marker = "*"
		}
		// Unranked rows sort last; show their position instead.
		rank := i + 1
		if e.RankInRoom > 0 {
			rank = e.RankInRoom
		}
		level := "-"
		if e.UserLevel > 0 {
			level = fmt.Sprintf("%d", e.UserLevel)
		}
		fmt.Fprintf(w, "  %-1s %-5s  %-20s  %-4s  %-6s  +%d EXP\n",
			marker, fmt.Sprintf("#%d", rank), e.UserNickname, level, engine.FormatTime(e.FinishTime), engine.ExpGain(e.RankInRoom))
	}
}
