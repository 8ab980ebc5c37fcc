// Package process launches external programs for the interpreter: single
// commands with optional file redirection and multi-stage pipelines.
package process

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/afero"
)

// ErrEmptyCommand is returned when asked to run a command without a name.
var ErrEmptyCommand = errors.New("cannot execute an empty command")

// Context is ambient redirection configuration threaded through quotation
// interpretation. Commands without their own redirects use it.
type Context struct {
	// InputFile is read fully and fed to the process stdin.
	InputFile string
	// OutputFile receives the process stdout, appended.
	OutputFile string
	// ErrorFile receives the process stderr, appended.
	ErrorFile string
}

// Command is a single process invocation.
type Command struct {
	// Argv holds the program name followed by its arguments, passed as-is.
	Argv []string
	// InputFile is read fully and written to the child's stdin.
	InputFile string
	// OutputFile is truncated and replaced by the child's stdout.
	OutputFile string
	// ErrorFile is truncated and replaced by the child's stderr.
	ErrorFile string
	// Stdout, if set, receives the child's stdout instead of any file.
	Stdout io.Writer
}

// Runner starts processes on behalf of the interpreter. The zero value is not
// usable, see NewRunner.
type Runner struct {
	// Fs resolves redirect targets.
	Fs afero.Fs

	// Standard I/O inherited by children without redirects.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env follows exec.Cmd semantics, see Setenv.
	Env []string

	// Logger traces launched processes.
	Logger *log.Logger
}

// NewRunner creates a runner using the interpreter's own standard I/O and
// environment.
func NewRunner(fs afero.Fs) *Runner {
	return &Runner{
		Fs:     fs,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Env:    os.Environ(),
		Logger: log.New(ioutil.Discard, "", 0),
	}
}

func (r *Runner) logf(format string, a ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, a...)
	}
}

// Run executes cmd and waits for it to exit, returning the exit code. Errors
// are only returned if the process couldn't be started or a redirect failed.
func (r *Runner) Run(cmd Command, ctx Context) (int, error) {
	c, err := r.command(cmd)
	if err != nil {
		return 1, err
	}

	stdin, err := r.input(cmd.InputFile, ctx)
	if err != nil {
		return 1, err
	}
	c.Stdin = stdin

	out, err := r.stdout(cmd, ctx)
	if err != nil {
		return 1, err
	}
	defer out.Close()
	c.Stdout = unwrap(out)

	errOut, err := r.stderr(cmd, ctx)
	if err != nil {
		return 1, err
	}
	defer errOut.Close()
	c.Stderr = unwrap(errOut)

	r.logf("exec: %q (stdin=%s, stdout=%s, stderr=%s)", cmd.Argv,
		describeInput(cmd.InputFile, ctx),
		describeOutput(cmd.OutputFile, ctx.OutputFile),
		describeOutput(cmd.ErrorFile, ctx.ErrorFile))

	code, err := exitStatus(c.Run())
	if err != nil {
		return code, fmt.Errorf("running %s: %w", cmd.Argv[0], err)
	}

	if err := out.Close(); err != nil {
		return code, err
	}
	if err := errOut.Close(); err != nil {
		return code, err
	}
	return code, nil
}

func (r *Runner) command(cmd Command) (*exec.Cmd, error) {
	if len(cmd.Argv) == 0 || cmd.Argv[0] == "" {
		return nil, ErrEmptyCommand
	}

	c := exec.Command(cmd.Argv[0], cmd.Argv[1:]...)
	c.Env = r.Env
	return c, nil
}

// Setenv sets name for every process launched afterwards.
func (r *Runner) Setenv(name, value string) {
	if r.Env == nil {
		r.Env = os.Environ()
	}

	entry := name + "=" + value
	for i, kv := range r.Env {
		if strings.HasPrefix(kv, name+"=") {
			r.Env[i] = entry
			return
		}
	}
	r.Env = append(r.Env, entry)
}

// input resolves the stdin of a process: its own redirect, then the context
// override, then the inherited stdin.
func (r *Runner) input(inputFile string, ctx Context) (io.Reader, error) {
	path := inputFile
	if path == "" {
		path = ctx.InputFile
	}
	if path == "" {
		return r.Stdin, nil
	}

	contents, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s for reading: %w", path, err)
	}
	return bytes.NewReader(contents), nil
}

func (r *Runner) stdout(cmd Command, ctx Context) (io.WriteCloser, error) {
	if cmd.Stdout != nil {
		return nopWriteCloser{cmd.Stdout}, nil
	}
	return r.output(cmd.OutputFile, ctx.OutputFile, r.Stdout)
}

func (r *Runner) stderr(cmd Command, ctx Context) (io.WriteCloser, error) {
	return r.output(cmd.ErrorFile, ctx.ErrorFile, r.Stderr)
}

// output resolves an output stream of a process: its own redirect, then the
// context override, then the inherited writer. Closing the returned writer
// flushes buffered output to its file.
func (r *Runner) output(own, inherited string, fallback io.Writer) (io.WriteCloser, error) {
	switch {
	case own != "":
		return &truncatingFile{fs: r.Fs, path: own}, nil
	case inherited != "":
		return r.OpenAppend(inherited)
	default:
		return nopWriteCloser{fallback}, nil
	}
}

// OpenAppend opens path for appending, creating it if needed.
func (r *Runner) OpenAppend(path string) (io.WriteCloser, error) {
	fd, err := r.Fs.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening file %s for writing: %w", path, err)
	}
	return fd, nil
}

// Truncate creates or empties the file at path.
func (r *Runner) Truncate(path string) error {
	fd, err := r.Fs.Create(path)
	if err != nil {
		return fmt.Errorf("opening file %s for writing: %w", path, err)
	}
	return fd.Close()
}

// Output returns the writer for interpreter output under ctx.
func (r *Runner) Output(ctx Context) (io.WriteCloser, error) {
	return r.output("", ctx.OutputFile, r.Stdout)
}

// ErrOutput returns the writer for interpreter error output under ctx.
func (r *Runner) ErrOutput(ctx Context) (io.WriteCloser, error) {
	return r.output("", ctx.ErrorFile, r.Stderr)
}

// exitStatus converts the result of exec.Cmd.Run/Wait into an exit code. Only
// failures unrelated to the child's exit status are returned as errors.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return code, nil
		}
		// Terminated by a signal.
		return 1, nil
	}
	return 1, err
}

func describeInput(inputFile string, ctx Context) string {
	switch {
	case inputFile != "":
		return inputFile
	case ctx.InputFile != "":
		return ctx.InputFile + " (context)"
	default:
		return "inherit"
	}
}

func describeOutput(own, inherited string) string {
	switch {
	case own != "":
		return own
	case inherited != "":
		return inherited + " (context, append)"
	default:
		return "inherit"
	}
}
