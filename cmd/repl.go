package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/mshell/core/config"
	"github.com/josephlewis42/mshell/core/logger"
	"github.com/josephlewis42/mshell/core/repl"
	"github.com/spf13/cobra"
)

// replCmd starts the interactive shell
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		return runRepl(cmd, cfg)
	},
}

func runRepl(cmd *cobra.Command, cfg *config.Configuration) error {
	s, err := openSession(cmd, "mshell repl")
	if err != nil {
		return err
	}
	defer s.Close()
	reporter := logger.NewReporter(s.stderr, "repl", cfg.Color)

	historyFile := expandHome(cfg.REPL.HistoryFile)
	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0755); err != nil {
			reporter.Warningf("history disabled: %v", err)
			historyFile = ""
		}
	}

	shell, err := repl.New(newEvaluator(s, cfg), reporter, repl.Options{
		Stdin:       s.stdin,
		Stdout:      s.stdout,
		Stderr:      s.stderr,
		Prompt:      cfg.REPL.Prompt,
		HistoryFile: historyFile,
		IsTerminal:  logger.IsTerminal(cmd.InOrStdin()),
	})
	if err != nil {
		return err
	}

	shell.Run()
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

func init() {
	rootCmd.AddCommand(replCmd)
}
