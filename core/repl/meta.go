package repl

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anmitsu/go-shlex"
	"github.com/josephlewis42/mshell/core/lexer"
)

// MetaPrefix starts a line handled by the shell rather than the evaluator.
const MetaPrefix = ":"

type metaCommand struct {
	short string
	run   func(s *Shell, args []string) error
}

var metaCommands map[string]metaCommand

func init() {
	// Assigned in init because :help lists the table.
	metaCommands = map[string]metaCommand{
		"help":  {"list the shell commands", (*Shell).metaHelp},
		"stack": {"print the stack", (*Shell).metaStack},
		"vars":  {"print the defined variables", (*Shell).metaVars},
		"clear": {"empty the stack", (*Shell).metaClear},
		"lex":   {"print the tokens of SOURCE", (*Shell).metaLex},
		"cd":    {"change the working directory", (*Shell).metaCd},
		"quit":  {"leave the shell", (*Shell).metaQuit},
	}
}

func (s *Shell) runMeta(line string) error {
	args, err := shlex.Split(strings.TrimPrefix(line, MetaPrefix), true)
	if err != nil {
		return fmt.Errorf("couldn't parse shell command: %w", err)
	}
	if len(args) == 0 {
		return fmt.Errorf("missing shell command, try %shelp", MetaPrefix)
	}

	cmd, ok := metaCommands[args[0]]
	if !ok {
		return fmt.Errorf("unknown shell command %s%s, try %shelp", MetaPrefix, args[0], MetaPrefix)
	}
	return cmd.run(s, args)
}

func (s *Shell) metaHelp(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":help",
		Short: metaCommands["help"].short,
	}

	return cmd.Run(args, s.out, func() error {
		var names []string
		for name := range metaCommands {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(s.out, "Lines are evaluated against a stack that persists between lines.")
		fmt.Fprintln(s.out, "Shell commands:")
		for _, name := range names {
			fmt.Fprintf(s.out, "  %s%-8s %s\n", MetaPrefix, name, metaCommands[name].short)
		}
		fmt.Fprintln(s.out, "Run `mshell builtins` for the language reference.")
		return nil
	})
}

func (s *Shell) metaStack(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":stack",
		Short: metaCommands["stack"].short,
	}

	return cmd.Run(args, s.out, func() error {
		fmt.Fprint(s.out, s.Stack.String())
		return nil
	})
}

func (s *Shell) metaVars(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":vars",
		Short: metaCommands["vars"].short,
	}

	return cmd.Run(args, s.out, func() error {
		for _, name := range s.Evaluator.VariableNames() {
			fmt.Fprintf(s.out, "%s = %s\n", name, s.Evaluator.Variables[name].DebugString())
		}
		return nil
	})
}

func (s *Shell) metaClear(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":clear [-a]",
		Short: metaCommands["clear"].short,
	}
	all := cmd.Flags().BoolLong("all", 'a', "also remove every variable")

	return cmd.Run(args, s.out, func() error {
		s.Stack.Clear()
		if *all {
			for name := range s.Evaluator.Variables {
				delete(s.Evaluator.Variables, name)
			}
		}
		return nil
	})
}

func (s *Shell) metaLex(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":lex 'SOURCE'...",
		Short: metaCommands["lex"].short,
	}

	return cmd.Run(args, s.out, func() error {
		source := strings.Join(cmd.Flags().Args(), " ")
		return lexer.Dump(s.out, lexer.Tokenize(source))
	})
}

func (s *Shell) metaCd(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":cd [DIR]",
		Short: metaCommands["cd"].short,
	}

	return cmd.Run(args, s.out, func() error {
		var dir string
		switch rest := cmd.Flags().Args(); len(rest) {
		case 0:
			home, err := s.Evaluator.HomeDir()
			if err != nil {
				return fmt.Errorf("couldn't find the home directory: %w", err)
			}
			dir = home
		case 1:
			dir = rest[0]
		default:
			return fmt.Errorf("too many arguments to %scd", MetaPrefix)
		}

		return os.Chdir(dir)
	})
}

func (s *Shell) metaQuit(args []string) error {
	cmd := &SimpleCommand{
		Use:   ":quit",
		Short: metaCommands["quit"].short,
	}

	return cmd.Run(args, s.out, func() error {
		s.Quit = true
		return nil
	})
}
