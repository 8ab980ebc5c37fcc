package eval

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/mshell/core/lexer"
	"github.com/josephlewis42/mshell/core/object"
	"github.com/josephlewis42/mshell/core/process"
)

type builtinFunc func(e *Evaluator, t lexer.Token, stack *object.Stack, ctx process.Context) error

type builtin struct {
	help string
	fn   builtinFunc
}

// builtinWords are the named operations dispatched from literal tokens.
var builtinWords = map[string]builtin{
	"dup":  {"( a -- a a ) duplicate the top of the stack", (*Evaluator).dup},
	"drop": {"( a -- ) discard the top of the stack", (*Evaluator).drop},
	"swap": {"( a b -- b a ) exchange the top two values", (*Evaluator).swap},
	".s":   {"( -- ) print the stack to stderr", (*Evaluator).printStack},
	"len":  {"( list|string -- int ) number of items or bytes", (*Evaluator).length},
	"str":  {"( a -- string ) convert a value to a string", (*Evaluator).str},
	"w":    {"( a -- ) write to stdout", writer(false, false)},
	"wl":   {"( a -- ) write a line to stdout", writer(false, true)},
	"we":   {"( a -- ) write to stderr", writer(true, false)},
	"wle":  {"( a -- ) write a line to stderr", writer(true, true)},
	"read": {"( -- string bool ) read a line from stdin, false at end of input", (*Evaluator).read},
	"args": {"( -- list ) the script's positional arguments", (*Evaluator).args},

	"o":  {"( cmd -- cmd ) executing pushes stdout as a list of lines", capture(object.CaptureLines)},
	"os": {"( cmd -- cmd ) executing pushes stdout without surrounding whitespace", capture(object.CaptureStripped)},
	"oc": {"( cmd -- cmd ) executing pushes the complete stdout", capture(object.CaptureComplete)},

	"nth":          {"( list int -- a ) item at an index, the integer may come first", (*Evaluator).nth},
	"append":       {"( list a -- list ) add a to the end of the list, either may come first", (*Evaluator).appendItem},
	"find-replace": {"( text find replacement -- string ) replace every occurrence of find", (*Evaluator).findReplace},
	"export":       {"( name -- ) copy variable name into the environment of launched processes", (*Evaluator).export},
}

// Word documents a keyword or builtin.
type Word struct {
	Name string
	Help string
}

// Builtins lists the builtin words, sorted by name. Positional arguments and
// home directory expansion are included as patterns.
func Builtins() []Word {
	words := []Word{
		{Name: "$N", Help: "( -- string ) positional argument N, starting at 1"},
		{Name: "~", Help: "( -- string ) the home directory, ~/path is expanded too"},
	}
	for name, b := range builtinWords {
		words = append(words, Word{Name: name, Help: b.help})
	}
	sort.Slice(words, func(i, j int) bool { return words[i].Name < words[j].Name })
	return words
}

// Keywords lists the syntax of the language in the order it's usually learned.
func Keywords() []Word {
	return []Word{
		{"[ ]", "evaluate the enclosed code and collect the results in a list"},
		{"( )", "quote the enclosed code without evaluating it"},
		{";", "( cmd -- ) execute a list, pipe or command name"},
		{"?", "( cmd -- int ) execute and push the exit code"},
		{"|", "( list -- pipe ) turn a list of lists into a pipeline"},
		{">", "( a b -- bool ) compare integers, or redirect a list/quotation's output to a file"},
		{"<", "( a b -- bool ) compare integers, or redirect a list/quotation's input from a file"},
		{"2>", "( cmd file -- cmd ) redirect a list/quotation's stderr to a file"},
		{":N: N: :N N:M", "( seq -- a ) index or slice a list, string or quotation, negative counts from the end"},
		{">= <=", "( a b -- bool ) compare integers"},
		{"=", "( a b -- bool ) integer equality"},
		{"+", "( a b -- c ) add integers or concatenate text"},
		{"-", "( a b -- c ) subtract integers"},
		{"not and or", "boolean logic"},
		{"true false", "boolean constants"},
		{"x", "( quote -- ) interpret a quotation"},
		{"if", "( [cond body ... else] -- ) run the body of the first truthy condition"},
		{"loop", "( quote -- ) repeat a quotation until break"},
		{"break", "leave the innermost loop"},
		{"@name", "( a -- ) store into variable name"},
		{"name!", "( -- a ) push variable name"},
	}
}

func (e *Evaluator) literal(t lexer.Token, stack *object.Stack, ctx process.Context) error {
	if b, ok := builtinWords[t.Lexeme]; ok {
		return b.fn(e, t, stack, ctx)
	}

	if n, ok := positionalIndex(t.Lexeme); ok {
		return e.positional(t, stack, n)
	}

	if t.Lexeme == "~" || strings.HasPrefix(t.Lexeme, "~/") {
		home, err := e.HomeDir()
		if err != nil {
			return wrapError(t, ErrArgument, err, "couldn't expand %s", t.Lexeme)
		}
		stack.Push(object.NewString(home + t.Lexeme[1:]))
		return nil
	}

	stack.Push(&object.Literal{Text: t.Lexeme})
	return nil
}

func (e *Evaluator) dup(t lexer.Token, stack *object.Stack, _ process.Context) error {
	top, err := stack.Peek()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot duplicate on an empty stack")
	}
	stack.Push(top)
	return nil
}

func (e *Evaluator) drop(t lexer.Token, stack *object.Stack, _ process.Context) error {
	if _, err := stack.Pop(); err != nil {
		return newError(t, ErrEmptyStack, "cannot drop on an empty stack")
	}
	return nil
}

func (e *Evaluator) swap(t lexer.Token, stack *object.Stack, _ process.Context) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}
	stack.Push(top)
	stack.Push(second)
	return nil
}

func (e *Evaluator) printStack(_ lexer.Token, stack *object.Stack, _ process.Context) error {
	fmt.Fprint(e.Runner.Stderr, stack.String())
	return nil
}

func (e *Evaluator) length(t lexer.Token, stack *object.Stack, _ process.Context) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot get the length of an empty stack")
	}

	n, err := object.Length(obj)
	if err != nil {
		return newError(t, ErrType, "cannot get the length of a %s", obj.TypeName())
	}

	stack.Push(&object.Integer{Value: int32(n)})
	return nil
}

func (e *Evaluator) str(t lexer.Token, stack *object.Stack, _ process.Context) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "cannot convert an empty stack to a string")
	}

	text, ok := obj.CommandLine()
	if !ok {
		text = obj.DebugString()
	}
	stack.Push(object.NewString(text))
	return nil
}

func writer(stderr, newline bool) builtinFunc {
	return func(e *Evaluator, t lexer.Token, stack *object.Stack, ctx process.Context) error {
		obj, err := stack.Pop()
		if err != nil {
			return newError(t, ErrEmptyStack, "nothing on the stack to write")
		}

		text, ok := obj.CommandLine()
		if !ok {
			return newError(t, ErrType, "cannot write a %s", obj.TypeName())
		}
		if newline {
			text += "\n"
		}

		open := e.Runner.Output
		if stderr {
			open = e.Runner.ErrOutput
		}

		out, err := open(ctx)
		if err != nil {
			return wrapError(t, ErrProcess, err, "write failed")
		}
		if _, err := io.WriteString(out, text); err != nil {
			out.Close()
			return wrapIOError(t, err)
		}
		return wrapIOError(t, out.Close())
	}
}

func wrapIOError(t lexer.Token, err error) error {
	if err == nil {
		return nil
	}
	return wrapError(t, ErrProcess, err, "write failed")
}

func (e *Evaluator) read(t lexer.Token, stack *object.Stack, _ process.Context) error {
	line, ok, err := process.ReadLine(e.Runner.Stdin)
	if err != nil {
		return wrapError(t, ErrProcess, err, "read failed")
	}
	stack.Push(object.NewString(line))
	stack.Push(&object.Boolean{Value: ok})
	return nil
}

func (e *Evaluator) args(_ lexer.Token, stack *object.Stack, _ process.Context) error {
	items := make([]object.Value, len(e.Args))
	for i, arg := range e.Args {
		items[i] = object.NewString(arg)
	}
	stack.Push(&object.List{Items: items})
	return nil
}

func capture(mode object.Capture) builtinFunc {
	return func(e *Evaluator, t lexer.Token, stack *object.Stack, _ process.Context) error {
		obj, err := stack.Pop()
		if err != nil {
			return newError(t, ErrEmptyStack, "cannot set stdout capture on an empty stack")
		}

		switch v := obj.(type) {
		case *object.List:
			v.Capture = mode
		case *object.Pipe:
			v.List.Capture = mode
		default:
			return newError(t, ErrType, "cannot set stdout capture on a %s", obj.TypeName())
		}
		stack.Push(obj)
		return nil
	}
}

func (e *Evaluator) nth(t lexer.Token, stack *object.Stack, _ process.Context) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	seq, n := second, top
	if _, ok := n.(*object.Integer); !ok {
		seq, n = top, second
	}
	i, ok := n.(*object.Integer)
	if !ok {
		return newError(t, ErrType, "cannot do 'nth' with a %s and a %s", second.TypeName(), top.TypeName())
	}

	item, err := object.Index(seq, int(i.Value))
	switch {
	case errors.Is(err, object.ErrNotIndexable):
		return newError(t, ErrType, "cannot do 'nth' on a %s", seq.TypeName())
	case err != nil:
		return wrapError(t, ErrArgument, err, "bad index for 'nth'")
	}
	stack.Push(item)
	return nil
}

// appendItem builds a new list so stored lists keep their items. With two
// lists, the top one is added to the second.
func (e *Evaluator) appendItem(t lexer.Token, stack *object.Stack, _ process.Context) error {
	top, second, err := pop2(t, stack)
	if err != nil {
		return err
	}

	list, item := second, top
	if _, ok := list.(*object.List); !ok {
		list, item = top, second
	}
	l, ok := list.(*object.List)
	if !ok {
		return newError(t, ErrType, "cannot append a %s to a %s", top.TypeName(), second.TypeName())
	}

	items := make([]object.Value, len(l.Items), len(l.Items)+1)
	copy(items, l.Items)
	stack.Push(&object.List{
		Items:    append(items, item),
		Redirect: l.Redirect,
		Capture:  l.Capture,
	})
	return nil
}

func (e *Evaluator) findReplace(t lexer.Token, stack *object.Stack, _ process.Context) error {
	if stack.Len() < 3 {
		return newError(t, ErrEmptyStack, "'find-replace' requires three values on the stack, found %d", stack.Len())
	}
	replacementObj, _ := stack.Pop()
	findObj, _ := stack.Pop()
	originalObj, _ := stack.Pop()

	var texts [3]string
	for i, v := range []object.Value{originalObj, findObj, replacementObj} {
		text, ok := textOf(v)
		if !ok {
			role := [...]string{"original", "find", "replacement"}[i]
			return newError(t, ErrType, "cannot find-replace with a %s as the %s string", v.TypeName(), role)
		}
		texts[i] = text
	}

	stack.Push(object.NewString(strings.ReplaceAll(texts[0], texts[1], texts[2])))
	return nil
}

func (e *Evaluator) export(t lexer.Token, stack *object.Stack, _ process.Context) error {
	obj, err := stack.Pop()
	if err != nil {
		return newError(t, ErrEmptyStack, "nothing on the stack to export")
	}

	name, ok := textOf(obj)
	if !ok {
		return newError(t, ErrType, "expected the name of a variable to export, received a %s", obj.TypeName())
	}

	v, ok := e.Variables[name]
	if !ok {
		return newError(t, ErrUndefinedVariable, "could not find variable %s to export, defined variables: %s", name, strings.Join(e.VariableNames(), ", "))
	}

	value, ok := v.CommandLine()
	if !ok {
		return newError(t, ErrType, "cannot export a %s", v.TypeName())
	}

	e.Runner.Setenv(name, value)
	return nil
}

// positionalIndex parses $N.
func positionalIndex(text string) (int, bool) {
	if len(text) < 2 || text[0] != '$' {
		return 0, false
	}
	for _, c := range text[1:] {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(text[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func (e *Evaluator) positional(t lexer.Token, stack *object.Stack, n int) error {
	if n < 1 || n > len(e.Args) {
		return newError(t, ErrArgument, "positional argument %s is out of range, %d arguments were given", t.Lexeme, len(e.Args))
	}
	stack.Push(object.NewString(e.Args[n-1]))
	return nil
}
