// Package object holds the runtime values manipulated by the evaluator.
package object

import (
	"strconv"
	"strings"

	"github.com/josephlewis42/mshell/core/lexer"
)

// Value is a closed set of runtime variants: *Literal, *List, *Quotation,
// *Integer, *Boolean, *String and *Pipe. The unexported method seals the set
// so every variant must implement the full interface.
type Value interface {
	// TypeName is the user-facing name of the variant, used in diagnostics.
	TypeName() string
	// DebugString renders the value for the stack dump.
	DebugString() string
	// CommandLine returns the process argument text of the value and whether
	// the value can be used as a process argument at all.
	CommandLine() (string, bool)

	value()
}

var (
	_ Value = (*Literal)(nil)
	_ Value = (*List)(nil)
	_ Value = (*Quotation)(nil)
	_ Value = (*Integer)(nil)
	_ Value = (*Boolean)(nil)
	_ Value = (*String)(nil)
	_ Value = (*Pipe)(nil)
)

// Literal is bare unquoted text.
type Literal struct {
	Text string
}

func (*Literal) value()                        {}
func (*Literal) TypeName() string              { return "Literal" }
func (l *Literal) DebugString() string         { return l.Text }
func (l *Literal) CommandLine() (string, bool) { return l.Text, true }

// Redirect holds optional file targets for a list or quotation.
type Redirect struct {
	InputFile  string
	OutputFile string
	ErrorFile  string
}

// Capture selects how the stdout of an executed list comes back as a value.
type Capture int

const (
	// CaptureNone leaves stdout alone.
	CaptureNone Capture = iota
	// CaptureLines pushes a List with a String per line.
	CaptureLines
	// CaptureStripped pushes a String without surrounding whitespace.
	CaptureStripped
	// CaptureComplete pushes a String holding the output as is.
	CaptureComplete
)

// List is an eagerly evaluated sequence of values.
type List struct {
	Items []Value
	Redirect
	Capture Capture
}

func (*List) value()                      {}
func (*List) TypeName() string            { return "List" }
func (*List) CommandLine() (string, bool) { return "", false }

func (l *List) DebugString() string {
	return "[" + strings.Join(DebugStrings(l.Items), " ") + "]"
}

// Quotation is deferred code. Tokens is a view into the token buffer produced
// by the lexer and must not be modified.
type Quotation struct {
	Tokens []lexer.Token
	Redirect
}

func (*Quotation) value()                      {}
func (*Quotation) TypeName() string            { return "Quotation" }
func (*Quotation) CommandLine() (string, bool) { return "", false }

func (q *Quotation) DebugString() string {
	lexemes := make([]string, len(q.Tokens))
	for i, t := range q.Tokens {
		lexemes[i] = t.Lexeme
	}
	return "(" + strings.Join(lexemes, " ") + ")"
}

// Integer is a 32-bit signed number.
type Integer struct {
	Value int32
}

func (*Integer) value()                        {}
func (*Integer) TypeName() string              { return "Integer" }
func (i *Integer) DebugString() string         { return strconv.FormatInt(int64(i.Value), 10) }
func (i *Integer) CommandLine() (string, bool) { return i.DebugString(), true }

// Boolean is true or false.
type Boolean struct {
	Value bool
}

func (*Boolean) value()                      {}
func (*Boolean) TypeName() string            { return "Boolean" }
func (b *Boolean) DebugString() string       { return strconv.FormatBool(b.Value) }
func (*Boolean) CommandLine() (string, bool) { return "", false }

// String is a quoted string with escapes resolved. Raw keeps the source text
// including quotes.
type String struct {
	Content string
	Raw     string
}

func (*String) value()                        {}
func (*String) TypeName() string              { return "String" }
func (s *String) CommandLine() (string, bool) { return s.Content, true }

func (s *String) DebugString() string {
	if s.Raw != "" {
		return s.Raw
	}
	return strconv.Quote(s.Content)
}

// Pipe marks a list of lists for pipelined execution.
type Pipe struct {
	List *List
}

func (*Pipe) value()                      {}
func (*Pipe) TypeName() string            { return "Pipe" }
func (*Pipe) CommandLine() (string, bool) { return "", false }

func (p *Pipe) DebugString() string {
	return strings.Join(DebugStrings(p.List.Items), " | ")
}

// DebugStrings renders each value with DebugString.
func DebugStrings(values []Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.DebugString()
	}
	return out
}

// NewString creates a String without raw source text.
func NewString(content string) *String {
	return &String{Content: content}
}
