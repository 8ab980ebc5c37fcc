package eval

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/mshell/core/lexer"
)

// Error kinds, match them with errors.Is.
var (
	ErrSyntax            = errors.New("syntax error")
	ErrType              = errors.New("type error")
	ErrEmptyStack        = errors.New("empty stack")
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrInfiniteLoop      = errors.New("infinite loop")
	ErrProcess           = errors.New("process error")
	ErrBreak             = errors.New("unexpected break")
	ErrArgument          = errors.New("invalid argument")
)

// Error is an evaluation failure at a source position.
type Error struct {
	Line   int
	Column int
	Kind   error
	Msg    string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// Is reports whether target is the error kind or matches the cause.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Position returns the line and column the error was raised at.
func (e *Error) Position() (line, column int) {
	return e.Line, e.Column
}

// Message is the error text without its position.
func (e *Error) Message() string {
	return e.Msg
}

func newError(t lexer.Token, kind error, format string, a ...interface{}) *Error {
	return &Error{
		Line:   t.Line,
		Column: t.Column,
		Kind:   kind,
		Msg:    fmt.Sprintf(format, a...),
	}
}

func wrapError(t lexer.Token, kind error, err error, format string, a ...interface{}) *Error {
	e := newError(t, kind, format, a...)
	e.Msg = fmt.Sprintf("%s: %v", e.Msg, err)
	e.Err = err
	return e
}

// ExitStatusError aborts evaluation when stop-on-error is enabled and a
// process exits non-zero.
type ExitStatusError struct {
	Line   int
	Column int
	Code   int
}

func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message())
}

func (e *ExitStatusError) Position() (line, column int) {
	return e.Line, e.Column
}

func (e *ExitStatusError) Message() string {
	return fmt.Sprintf("process exited with code %d", e.Code)
}
