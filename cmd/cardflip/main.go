// cardflip is a terminal memory game: flip cards, match problems to their
// answers and images to their twins, as fast as you can.
//
// Usage:
//
//	cardflip play       - Play in the terminal
//	cardflip serve      - Start SSH server for remote play
//	cardflip scores     - Show local best runs
//	cardflip results    - Show a lobby room leaderboard
//
// Global flags (each also read from CARDFLIP_<NAME>):
//
//	--fps <rate>      - Set tick rate (default: 30)
//	--seed <value>    - Set RNG seed for a reproducible deck
//	--db <path>       - Set database path (default: ~/.cardflip/runs.db)
//	--config <path>   - Custom game config YAML
//	--api-url, --token, --room, --user - Lobby reporting
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CARDFLIP"

func main() {
	if err := newRootCmd(&options{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cardflip",
		Short: "Card Flip - a memory game for your terminal",
		Long: `Card Flip deals 20 face-down cards: four problems with their answers
and six pairs of images. Flip two at a time and match every pair.
The clock starts on the first flip; finish fast for a higher score.

Available commands:
  play     - Play in the terminal
  serve    - Start SSH server for remote play
  scores   - View local best runs
  results  - View a lobby room leaderboard

Examples:
  cardflip play
  cardflip play --seed 42
  CARDFLIP_TOKEN=... cardflip play --room 12 --user 7
  cardflip serve --ssh :2222
  cardflip scores --recent`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(normalizeFlag)

	fs.IntVar(&opts.fps, "fps", 30, "tick rate (env: CARDFLIP_FPS)")
	fs.Int64Var(&opts.seed, "seed", 0, "RNG seed, 0 = random based on time (env: CARDFLIP_SEED)")
	fs.StringVar(&opts.dbPath, "db", "~/.cardflip/runs.db", "path to run history database (env: CARDFLIP_DB)")
	fs.StringVar(&opts.configPath, "config", "", "path to custom game config YAML (env: CARDFLIP_CONFIG)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging; the TUI logs to ~/.cardflip/cardflip.log (env: CARDFLIP_VERBOSE)")

	fs.StringVar(&opts.apiURL, "api-url", "", "lobby API base URL (env: CARDFLIP_API_URL)")
	fs.StringVar(&opts.token, "token", "", "lobby access token (env: CARDFLIP_TOKEN)")
	fs.StringVar(&opts.room, "room", "", "lobby room id (env: CARDFLIP_ROOM)")
	fs.Int64Var(&opts.userID, "user", 0, "lobby user id (env: CARDFLIP_USER)")

	bindEnv(fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true

	cmd.AddCommand(newPlayCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newScoresCmd(opts))
	cmd.AddCommand(newResultsCmd(opts))

	return cmd
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// bindEnv fills every flag in fs that was not set on the command line from
// its CARDFLIP_ environment variable.
func bindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
