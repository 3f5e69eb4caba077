package main

import (
	"os"

	"github.com/aretw0/dialoguetree/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <graph-id>",
	Short: "Play a dialogue in the terminal",
	Long: `Plays the graph interactively. Type an option number to choose it, Enter to continue,
s to skip, r to recheck conditions and q to quit. --json switches to NDJSON frames for scripted clients.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		slot, _ := flags.GetString("slot")
		jsonMode, _ := flags.GetBool("json")
		resume, _ := flags.GetBool("resume")
		seed, _ := flags.GetUint64("seed")
		statePath, _ := flags.GetString("state")
		metricsAddr, _ := flags.GetString("metrics-addr")

		return p.Play(cmd.Context(), cli.PlayOptions{
			GraphID:     args[0],
			Slot:        slot,
			Resume:      resume,
			StatePath:   statePath,
			Seed:        seed,
			JSON:        jsonMode,
			Banner:      term.IsTerminal(int(os.Stdout.Fd())),
			MetricsAddr: metricsAddr,
			In:          cmd.InOrStdin(),
			Out:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	flags := playCmd.Flags()
	flags.String("slot", "", "Save slot to load records from and save them to")
	flags.Bool("resume", false, "Start at the saved resume node instead of the entry")
	flags.Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	flags.Uint64("seed", 0, "Seed for speech variations and gestures (0 picks a random one)")
	flags.String("state", "", "YAML file with the game state conditions and events use")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while playing")
}
