package logger

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// PositionedError is an error raised at a known place in the source.
type PositionedError interface {
	error
	Position() (line, column int)
	// Message is the error text without the position.
	Message() string
}

// Reporter prints diagnostics as SOURCE:LINE:COL: error: MESSAGE.
type Reporter struct {
	w      io.Writer
	source string

	errorLabel   *color.Color
	warningLabel *color.Color

	// Errors and Warnings count the reported diagnostics.
	Errors   int
	Warnings int
}

// NewReporter creates a reporter writing to w for diagnostics in source. The
// color mode is one of always, auto or never.
func NewReporter(w io.Writer, source string, colorMode string) *Reporter {
	r := &Reporter{
		w:            w,
		source:       source,
		errorLabel:   color.New(color.FgRed, color.Bold),
		warningLabel: color.New(color.FgYellow, color.Bold),
	}

	if ColorEnabled(colorMode, w) {
		r.errorLabel.EnableColor()
		r.warningLabel.EnableColor()
	} else {
		r.errorLabel.DisableColor()
		r.warningLabel.DisableColor()
	}
	return r
}

// ColorEnabled resolves a color mode for output written to w.
func ColorEnabled(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return IsTerminal(w)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w interface{}) bool {
	fd, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fd.Fd()))
}

// Error reports err, using its position if it has one.
func (r *Reporter) Error(err error) {
	r.Errors++

	var positioned PositionedError
	if errors.As(err, &positioned) {
		line, column := positioned.Position()
		fmt.Fprintf(r.w, "%s:%d:%d: %s %s\n", r.source, line, column, r.errorLabel.Sprint("error:"), positioned.Message())
		return
	}

	fmt.Fprintf(r.w, "%s %v\n", r.errorLabel.Sprint("error:"), err)
}

// Warningf reports a non-fatal problem.
func (r *Reporter) Warningf(format string, a ...interface{}) {
	r.Warnings++
	fmt.Fprintf(r.w, "%s %s\n", r.warningLabel.Sprint("warning:"), fmt.Sprintf(format, a...))
}
