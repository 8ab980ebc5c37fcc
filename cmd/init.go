package cmd

import (
	"log"

	"github.com/josephlewis42/mshell/core/config"
	"github.com/spf13/cobra"
)

// initCmd writes the default configuration
var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Write the default configuration to DIR (default: the user config dir).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := log.New(cmd.ErrOrStderr(), "", 0)

		dir := ""
		if len(args) > 0 {
			dir = args[0]
		} else {
			defaultDir, err := config.DefaultDir()
			if err != nil {
				return err
			}
			dir = defaultDir
		}

		_, err := config.Initialize(osFs, dir, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
