package eval

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/object"
	"github.com/josephlewis42/mshell/core/process"
)

// execute runs the value on top of the stack as a process (;). A captured
// stdout is pushed first, then the exit code for ?.
func (e *Evaluator) execute(t lexer.Token, stack *object.Stack, ctx process.Context) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "nothing on the stack to execute")
	}

	var (
		code int
		mode object.Capture
		out  bytes.Buffer
	)
	switch v := obj.(type) {
	case *object.Literal, *object.String:
		name, _ := v.CommandLine()
		code, err = e.Runner.Run(process.Command{Argv: []string{name}}, ctx)

	case *object.List:
		cmd, cerr := command(t, v)
		if cerr != nil {
			return cerr
		}
		if mode = v.Capture; mode != object.CaptureNone {
			cmd.Stdout = &out
		}
		code, err = e.Runner.Run(cmd, ctx)

	case *object.Pipe:
		stages := make([]process.Command, len(v.List.Items))
		for i, item := range v.List.Items {
			list, ok := item.(*object.List)
			if !ok {
				return newError(t, ErrType, "all items within a pipe must be lists, item %d is a %s", i, item.TypeName())
			}
			cmd, cerr := command(t, list)
			if cerr != nil {
				return cerr
			}
			stages[i] = cmd
		}
		if mode = v.List.Capture; mode != object.CaptureNone && len(stages) > 0 {
			stages[len(stages)-1].Stdout = &out
		}
		code, err = e.Runner.RunPipeline(stages, ctx)

	default:
		return newError(t, ErrType, "cannot execute a %s", obj.TypeName())
	}

	if err != nil {
		return wrapError(t, ErrProcess, err, "execution failed")
	}

	if e.StopOnError && code != 0 {
		return &ExitStatusError{Line: t.Line, Column: t.Column, Code: code}
	}

	switch mode {
	case object.CaptureLines:
		lines := []object.Value{}
		scanner := bufio.NewScanner(&out)
		for scanner.Scan() {
			lines = append(lines, object.NewString(scanner.Text()))
		}
		if err := scanner.Err(); err != nil {
			return wrapError(t, ErrProcess, err, "reading output failed")
		}
		stack.Push(&object.List{Items: lines})
	case object.CaptureStripped:
		stack.Push(object.NewString(strings.TrimSpace(out.String())))
	case object.CaptureComplete:
		stack.Push(object.NewString(out.String()))
	}

	if t.Kind == lexer.Question {
		stack.Push(&object.Integer{Value: int32(code)})
	}
	return nil
}

// command converts a list into a process invocation.
func command(t lexer.Token, list *object.List) (process.Command, error) {
	argv := make([]string, len(list.Items))
	for i, item := range list.Items {
		arg, ok := item.CommandLine()
		if !ok {
			return process.Command{}, newError(t, ErrType, "item %d of the command is a %s which can't be used as an argument", i, item.TypeName())
		}
		argv[i] = arg
	}

	return process.Command{
		Argv:       argv,
		InputFile:  list.InputFile,
		OutputFile: list.OutputFile,
		ErrorFile:  list.ErrorFile,
	}, nil
}
