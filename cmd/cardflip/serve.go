package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-cardflip/internal/config"
	"github.com/vovakirdan/tui-cardflip/internal/platform/tui"
)

type serveOptions struct {
	addr        string
	hostKey     string
	idleTimeout time.Duration
}

func newServeCmd(opts *options) *cobra.Command {
	so := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Card Flip SSH server",
		Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session and deck. Runs are stored
per-server. A client can report to a lobby room by sending its
credentials as environment variables:

  ssh -p 23234 -o SetEnv="CARDFLIP_TOKEN=... CARDFLIP_ROOM=12 CARDFLIP_USER=7" localhost

The server side --api-url picks the lobby; tokens are never read from the
server's own environment for remote sessions.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.cardflip/host_key

Examples:
  cardflip serve                           # Listen on :23234
  cardflip serve --ssh :2222               # Listen on port 2222
  cardflip serve --host-key ./my_host_key  # Use specific host key`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(opts, so)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(normalizeFlag)
	fs.StringVar(&so.addr, "ssh", ":23234", "SSH server address, host:port (env: CARDFLIP_SSH)")
	fs.StringVar(&so.hostKey, "host-key", "", "path to host key file, auto-generated if empty (env: CARDFLIP_HOST_KEY)")
	fs.DurationVar(&so.idleTimeout, "idle-timeout", 30*time.Minute, "idle time before disconnecting (env: CARDFLIP_IDLE_TIMEOUT)")
	bindEnv(fs)

	return cmd
}

func runServe(opts *options, so *serveOptions) error {
	gameCfg, err := config.LoadCardFlip(opts.configPath)
	if err != nil {
		return err
	}

	logger := opts.newLogger("cardflip-ssh")

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = so.addr
	cfg.HostKeyPath = so.hostKey
	cfg.DBPath = opts.dbPath
	cfg.IdleTimeout = so.idleTimeout
	cfg.TickRate = opts.fps
	cfg.Game = gameCfg
	cfg.Lobby.BaseURL = opts.apiURL

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting Card Flip SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
