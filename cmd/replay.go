package cmd

import (
	"time"

	"github.com/josephlewis42/mshell/core/ttylog"
	"github.com/spf13/cobra"
)

var replayMaxDelay time.Duration

// replayCmd plays back a session captured with --record
var replayCmd = &cobra.Command{
	Use:   "replay FILE." + ttylog.AsciicastFileExt,
	Short: "Play a recorded session.",
	Long: `Plays a session recorded with --record back to the current terminal.

Pauses between events are capped by --max-delay, zero disables them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		fd, err := osFs.Open(args[0])
		if err != nil {
			return err
		}
		defer fd.Close()

		output := ttylog.NewClientOutput(cmd.OutOrStdout())
		return ttylog.Replay(
			ttylog.NewAsciicastLogSource(fd),
			ttylog.NewRealTimePlayback(replayMaxDelay, ttylog.NewCRLFAdapter(output)),
		)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().DurationVar(&replayMaxDelay, "max-delay", 2*time.Second, "longest pause between two events")
}
