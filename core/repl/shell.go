// Package repl implements the interactive mshell prompt.
package repl

import (
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/mshell/core/eval"
	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/logger"
	"github.com/josephlewis42/mshell/core/object"
)

// DefaultPrompt is used when no prompt is configured.
const DefaultPrompt = "mshell> "

// Options configure the terminal side of a Shell.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prompt may contain \w (working directory) and \s (stack depth).
	Prompt      string
	HistoryFile string
	IsTerminal  bool
}

// Shell evaluates lines against a stack and variable table that persist for
// the whole session.
type Shell struct {
	Evaluator *eval.Evaluator
	Reporter  *logger.Reporter
	Readline  *readline.Instance
	Stack     object.Stack

	prompt string
	out    io.Writer

	// Set to true to quit the shell
	Quit bool
}

// New creates a shell reading lines with readline.
func New(evaluator *eval.Evaluator, reporter *logger.Reporter, opts Options) (*Shell, error) {
	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(opts.Stdin),
		Stdout:       opts.Stdout,
		Stderr:       opts.Stderr,
		HistoryFile:  opts.HistoryFile,
		AutoComplete: completer(),
		FuncIsTerminal: func() bool {
			return opts.IsTerminal
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	shell := newShell(evaluator, reporter, rl)
	shell.Readline = rl
	shell.prompt = opts.Prompt
	return shell, nil
}

func newShell(evaluator *eval.Evaluator, reporter *logger.Reporter, out io.Writer) *Shell {
	return &Shell{
		Evaluator: evaluator,
		Reporter:  reporter,
		prompt:    DefaultPrompt,
		out:       out,
	}
}

// completer offers keywords, builtin words and shell commands.
func completer() readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for word := range lexer.Keywords {
		items = append(items, readline.PcItem(word))
	}
	for _, word := range eval.Builtins() {
		if word.Name != "$N" {
			items = append(items, readline.PcItem(word.Name))
		}
	}
	for name := range metaCommands {
		items = append(items, readline.PcItem(MetaPrefix+name))
	}
	return readline.NewPrefixCompleter(items...)
}

// Prompt renders the configured prompt.
func (s *Shell) Prompt() string {
	prompt := s.prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	if strings.Contains(prompt, `\w`) {
		pwd, _ := os.Getwd()
		if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(pwd, home) {
			pwd = "~" + strings.TrimPrefix(pwd, home)
		}
		prompt = strings.ReplaceAll(prompt, `\w`, pwd)
	}
	prompt = strings.ReplaceAll(prompt, `\s`, strconv.Itoa(s.Stack.Len()))

	return prompt
}

// Run reads and evaluates lines until input ends or :quit.
func (s *Shell) Run() {
	defer s.Readline.Close()

	for !s.Quit {
		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return // Input closed, quit.

		case err == readline.ErrInterrupt:
			// Interrupt clears line.
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		case len(strings.TrimSpace(line)) == 0:
			continue // empty line

		default:
			s.RunLine(line)
		}
	}
}

// RunLine evaluates a single line, or runs it as a shell command if it
// starts with MetaPrefix. Failures are reported and returned; the stack keeps
// whatever the line pushed before failing.
func (s *Shell) RunLine(line string) error {
	var err error
	if strings.HasPrefix(strings.TrimSpace(line), MetaPrefix) {
		err = s.runMeta(strings.TrimSpace(line))
	} else {
		err = s.Evaluator.Run(lexer.Tokenize(line), &s.Stack)
	}

	if err != nil {
		s.Reporter.Error(err)
	}
	return err
}
