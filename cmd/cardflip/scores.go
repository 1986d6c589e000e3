package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
	"github.com/vovakirdan/tui-cardflip/internal/storage"
)

type scoresOptions struct {
	limit  int
	recent bool
	clear  bool
}

func newScoresCmd(opts *options) *cobra.Command {
	so := &scoresOptions{}

	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show local best runs",
		Long: `Display the fastest runs saved on this machine, with overall stats.

Examples:
  cardflip scores
  cardflip scores --recent --limit 5
  cardflip scores --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := storage.Open(opts.dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if so.clear {
				if err := store.ClearRuns(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Run history cleared.")
				return nil
			}
			return printScores(cmd.OutOrStdout(), store, so)
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&so.limit, "limit", "n", 10, "number of runs to show")
	fs.BoolVar(&so.recent, "recent", false, "show the most recent runs instead of the fastest")
	fs.BoolVar(&so.clear, "clear", false, "delete all saved runs")

	return cmd
}

func printScores(w io.Writer, store *storage.Store, so *scoresOptions) error {
	title := "Best runs"
	load := store.BestRuns
	if so.recent {
		title = "Recent runs"
		load = store.RecentRuns
	}

	runs, err := load(so.limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Card Flip - %s\n\n", title)

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Play 'cardflip play' to set the first time!")
		return nil
	}

	fmt.Fprintf(w, "  %-4s  %-6s  %-6s  %-5s  %-10s  %s\n", "#", "Time", "Score", "Rank", "Room", "Date")
	fmt.Fprintf(w, "  %-4s  %-6s  %-6s  %-5s  %-10s  %s\n", "----", "----", "-----", "----", "----", "----")
	for i, r := range runs {
		rank := "-"
		if r.Rank > 0 {
			rank = fmt.Sprintf("#%d", r.Rank)
		}
		room := r.RoomID
		if room == "" {
			room = "local"
		}
		fmt.Fprintf(w, "  %-4d  %-6s  %-6d  %-5s  %-10s  %s\n",
			i+1, engine.FormatTime(r.FinishTime), r.Score, rank, room, r.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	st, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Runs: %d   Best time: %s   Best score: %d   Average: %s\n",
		st.Runs, engine.FormatTime(st.BestTime), st.BestScore, engine.FormatTime(int(st.AvgTime+0.5)))
	return nil
}
