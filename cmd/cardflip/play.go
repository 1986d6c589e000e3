package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-cardflip/internal/config"
	"github.com/vovakirdan/tui-cardflip/internal/core"
	"github.com/vovakirdan/tui-cardflip/internal/lobby"
	"github.com/vovakirdan/tui-cardflip/internal/platform/tui"
	"github.com/vovakirdan/tui-cardflip/internal/storage"
)

func newPlayCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play Card Flip",
		Long: `Start a Card Flip session in this terminal.

Controls:
  Arrows/WASD  - Move the cursor
  Space/Enter  - Flip the card under the cursor
  R            - New deck (after all pairs are found)
  Q            - Quit (asks first while the clock runs)
  Ctrl+C       - Quit immediately

Every finished run is saved locally. With --token, --room and --user set
(or CARDFLIP_TOKEN, CARDFLIP_ROOM, CARDFLIP_USER) the run is also reported
to the lobby and the room leaderboard is shown.

Examples:
  cardflip play
  cardflip play --seed 7
  cardflip play --config ./my-deck.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlay(cmd, opts)
		},
	}
}

func runPlay(cmd *cobra.Command, opts *options) error {
	gameCfg, err := config.LoadCardFlip(opts.configPath)
	if err != nil {
		return err
	}

	width, height := 80, 24
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	logger, closer, err := opts.newTUILogger()
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := storage.Open(opts.dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open runs database: %v\n", err)
		// Continue without storage - game still works
	} else {
		defer store.Close()
	}

	reporter := lobby.NewReporter(lobby.NewClient(opts.lobbyConfig(), nil), logger.WithPrefix("lobby"))
	if !reporter.Enabled() {
		logger.Debug("lobby reporting disabled", "room", opts.room, "user", opts.userID)
	}

	return tui.Run(tui.Options{
		Game: gameCfg,
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: opts.fps,
			Seed:     opts.seed,
		},
		Store:    store,
		Reporter: reporter,
		Logger:   logger,
		Context:  cmd.Context(),
	})
}
