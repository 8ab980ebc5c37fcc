package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"io/ioutil"
	"log"
	"os"

	"github.com/josephlewis42/mshell/core/config"
	"github.com/josephlewis42/mshell/core/eval"
	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/logger"
	"github.com/josephlewis42/mshell/core/object"
	"github.com/josephlewis42/mshell/core/process"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const stdinSource = "<stdin>"

var (
	cfgPath    string
	lexOnly    bool
	recordPath string

	// osFs backs script loading, redirects and configuration.
	osFs = afero.NewOsFs()
)

// exitCodeError ends the program with code once the failure was reported.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Resolve(osFs, cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// newEvaluator wires an evaluator to the session's standard I/O.
func newEvaluator(s *session, cfg *config.Configuration) *eval.Evaluator {
	runner := process.NewRunner(osFs)
	runner.Stdin = s.stdin
	runner.Stdout = s.stdout
	runner.Stderr = s.stderr
	runner.Logger = logger.NewTrace(s.stderr, cfg.Trace)

	evaluator := eval.New(runner)
	evaluator.MaxLoopIterations = cfg.MaxLoopIterations
	evaluator.StopOnError = cfg.StopOnError
	return evaluator
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mshell [FILE [ARGS...]]",
	Short: "A concatenative shell for orchestrating processes",
	Long: `mshell evaluates a stack based language made for running processes.

The script is read from FILE, or from standard input when no FILE is given.
Arguments after FILE are passed to the script (see args and $N). With no FILE
and a terminal on standard input an interactive shell is started.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if len(args) == 0 && !lexOnly && logger.IsTerminal(cmd.InOrStdin()) {
			return runRepl(cmd, cfg)
		}

		sourceName := stdinSource
		if len(args) > 0 {
			sourceName = args[0]
		}

		s, err := openSession(cmd, sourceName)
		if err != nil {
			return err
		}
		defer s.Close()
		reporter := logger.NewReporter(s.stderr, sourceName, cfg.Color)

		var source []byte
		if len(args) > 0 {
			source, err = afero.ReadFile(osFs, args[0])
		} else {
			source, err = ioutil.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return reportFailure(cmd, reporter, err)
		}

		tokens := lexer.Tokenize(string(source))
		if lexOnly {
			return lexer.Dump(s.stdout, tokens)
		}

		evaluator := newEvaluator(s, cfg)
		if len(args) > 0 {
			evaluator.Args = args[1:]
		}

		var stack object.Stack
		if err := evaluator.Run(tokens, &stack); err != nil {
			return reportFailure(cmd, reporter, err)
		}
		return nil
	},
}

// reportFailure prints err as a diagnostic and converts it to the exit code.
func reportFailure(cmd *cobra.Command, reporter *logger.Reporter, err error) error {
	reporter.Error(err)
	cmd.SilenceErrors = true

	var exitStatus *eval.ExitStatusError
	if errors.As(err, &exitStatus) {
		return &exitCodeError{code: exitStatus.Code}
	}
	return &exitCodeError{code: 1}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var exitErr *exitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory or config.yaml path (default: the user config dir)")
	rootCmd.PersistentFlags().StringVar(&recordPath, "record", "", "record the session's standard streams to an asciicast file")
	rootCmd.Flags().BoolVar(&lexOnly, "lex", false, "print the tokens of the script instead of running it")

	// Flags after FILE belong to the script.
	rootCmd.Flags().SetInterspersed(false)
}
