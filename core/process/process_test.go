package process

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRunner struct {
	*Runner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestRunner(t *testing.T, programs ...string) *testRunner {
	t.Helper()

	for _, program := range programs {
		if _, err := exec.LookPath(program); err != nil {
			t.Skipf("%s not available: %v", program, err)
		}
	}

	tr := &testRunner{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	tr.Runner = &Runner{
		Fs:     afero.NewMemMapFs(),
		Stdin:  strings.NewReader(""),
		Stdout: tr.stdout,
		Stderr: tr.stderr,
		Logger: log.New(ioutil.Discard, "", 0),
	}
	return tr
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	contents, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(contents)
}

func TestRun(t *testing.T) {
	r := newTestRunner(t, "echo")

	code, err := r.Run(Command{Argv: []string{"echo", "hi", "there"}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi there\n", r.stdout.String())
}

func TestRunArgumentsAreNotReinterpreted(t *testing.T) {
	r := newTestRunner(t, "echo")

	_, err := r.Run(Command{Argv: []string{"echo", "*", "$HOME", "a  b"}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "* $HOME a  b\n", r.stdout.String())
}

func TestRunExitCode(t *testing.T) {
	r := newTestRunner(t, "sh")

	code, err := r.Run(Command{Argv: []string{"sh", "-c", "exit 3"}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunErrors(t *testing.T) {
	r := newTestRunner(t)

	_, err := r.Run(Command{}, Context{})
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = r.Run(Command{Argv: []string{"mshell-this-program-does-not-exist"}}, Context{})
	assert.Error(t, err)

	_, err = r.Run(Command{Argv: []string{"echo"}, InputFile: "missing.txt"}, Context{})
	assert.Error(t, err)
}

func TestRunOutputFile(t *testing.T) {
	r := newTestRunner(t, "echo")
	require.NoError(t, afero.WriteFile(r.Fs, "out.txt", []byte("previous contents that are long\n"), 0644))

	code, err := r.Run(Command{Argv: []string{"echo", "hi"}, OutputFile: "out.txt"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	assert.Equal(t, "hi\n", readFile(t, r.Fs, "out.txt"))
	assert.Empty(t, r.stdout.String())
}

func TestRunInputFile(t *testing.T) {
	r := newTestRunner(t, "cat")
	require.NoError(t, afero.WriteFile(r.Fs, "in.txt", []byte("from file\n"), 0644))

	_, err := r.Run(Command{Argv: []string{"cat"}, InputFile: "in.txt"}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "from file\n", r.stdout.String())
}

func TestRunContext(t *testing.T) {
	r := newTestRunner(t, "echo", "cat")
	require.NoError(t, afero.WriteFile(r.Fs, "log.txt", []byte("a\n"), 0644))
	require.NoError(t, afero.WriteFile(r.Fs, "in.txt", []byte("c\n"), 0644))
	ctx := Context{OutputFile: "log.txt", InputFile: "in.txt"}

	_, err := r.Run(Command{Argv: []string{"echo", "b"}}, ctx)
	require.NoError(t, err)
	_, err = r.Run(Command{Argv: []string{"cat"}}, ctx)
	require.NoError(t, err)

	assert.Equal(t, "a\nb\nc\n", readFile(t, r.Fs, "log.txt"))

	t.Run("own redirect wins", func(t *testing.T) {
		_, err := r.Run(Command{Argv: []string{"echo", "own"}, OutputFile: "own.txt"}, ctx)
		require.NoError(t, err)
		assert.Equal(t, "own\n", readFile(t, r.Fs, "own.txt"))
		assert.Equal(t, "a\nb\nc\n", readFile(t, r.Fs, "log.txt"))
	})
}

func TestRunPipeline(t *testing.T) {
	r := newTestRunner(t, "echo", "tr")

	code, err := r.RunPipeline([]Command{
		{Argv: []string{"echo", "hello"}},
		{Argv: []string{"tr", "a-z", "A-Z"}},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "HELLO\n", r.stdout.String())
}

func TestRunPipelineSingleStage(t *testing.T) {
	r := newTestRunner(t, "echo")

	_, err := r.RunPipeline([]Command{{Argv: []string{"echo", "solo"}}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "solo\n", r.stdout.String())
}

func TestRunPipelineLastExitCode(t *testing.T) {
	r := newTestRunner(t, "sh")

	code, err := r.RunPipeline([]Command{
		{Argv: []string{"sh", "-c", "echo x; exit 7"}},
		{Argv: []string{"sh", "-c", "cat >/dev/null; exit 4"}},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 4, code)
}

func TestRunPipelineLargeOutput(t *testing.T) {
	r := newTestRunner(t, "head", "cat", "wc")

	// Well beyond a pipe buffer, each stage must be drained concurrently.
	size := 1 << 20
	code, err := r.RunPipeline([]Command{
		{Argv: []string{"head", "-c", fmt.Sprint(size), "/dev/zero"}},
		{Argv: []string{"cat"}},
		{Argv: []string{"wc", "-c"}},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, fmt.Sprint(size), strings.TrimSpace(r.stdout.String()))
}

func TestRunPipelineRedirects(t *testing.T) {
	r := newTestRunner(t, "cat", "tr")
	require.NoError(t, afero.WriteFile(r.Fs, "in.txt", []byte("abc\n"), 0644))

	_, err := r.RunPipeline([]Command{
		{Argv: []string{"cat"}, InputFile: "in.txt"},
		{Argv: []string{"tr", "a-z", "A-Z"}, OutputFile: "out.txt"},
	}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "ABC\n", readFile(t, r.Fs, "out.txt"))
	assert.Empty(t, r.stdout.String())
}

func TestRunPipelineErrors(t *testing.T) {
	r := newTestRunner(t, "echo")

	_, err := r.RunPipeline(nil, Context{})
	assert.ErrorIs(t, err, ErrEmptyPipeline)

	_, err = r.RunPipeline([]Command{
		{Argv: []string{"echo", "a"}},
		{},
	}, Context{})
	assert.ErrorIs(t, err, ErrEmptyCommand)

	_, err = r.RunPipeline([]Command{
		{Argv: []string{"echo", "a"}},
		{Argv: []string{"mshell-this-program-does-not-exist"}},
	}, Context{})
	assert.Error(t, err)
}

func TestTruncateAndOutput(t *testing.T) {
	r := newTestRunner(t)
	require.NoError(t, afero.WriteFile(r.Fs, "f.txt", []byte("old"), 0644))

	require.NoError(t, r.Truncate("f.txt"))
	assert.Equal(t, "", readFile(t, r.Fs, "f.txt"))

	w, err := r.Output(Context{OutputFile: "f.txt"})
	require.NoError(t, err)
	fmt.Fprint(w, "appended")
	require.NoError(t, w.Close())
	assert.Equal(t, "appended", readFile(t, r.Fs, "f.txt"))

	w, err = r.Output(Context{})
	require.NoError(t, err)
	fmt.Fprint(w, "stdout")
	require.NoError(t, w.Close())
	assert.Equal(t, "stdout", r.stdout.String())
}

func TestReadLine(t *testing.T) {
	reader := strings.NewReader("first\r\nsecond\nlast")

	line, ok, err := ReadLine(reader)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", line)

	line, ok, err = ReadLine(reader)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", line)

	line, ok, err = ReadLine(reader)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "last", line)

	line, ok, err = ReadLine(reader)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", line)
}

func TestRunErrorFile(t *testing.T) {
	r := newTestRunner(t, "sh")
	require.NoError(t, afero.WriteFile(r.Fs, "err.txt", []byte("previous contents that are long\n"), 0644))

	_, err := r.Run(Command{Argv: []string{"sh", "-c", "echo out; echo oops >&2"}, ErrorFile: "err.txt"}, Context{})
	require.NoError(t, err)

	assert.Equal(t, "oops\n", readFile(t, r.Fs, "err.txt"))
	assert.Equal(t, "out\n", r.stdout.String())
	assert.Empty(t, r.stderr.String())

	t.Run("context appends", func(t *testing.T) {
		_, err := r.Run(Command{Argv: []string{"sh", "-c", "echo again >&2"}}, Context{ErrorFile: "err.txt"})
		require.NoError(t, err)
		assert.Equal(t, "oops\nagain\n", readFile(t, r.Fs, "err.txt"))
	})
}

func TestRunCapture(t *testing.T) {
	r := newTestRunner(t, "echo")

	var captured bytes.Buffer
	_, err := r.Run(Command{Argv: []string{"echo", "caught"}, OutputFile: "ignored.txt", Stdout: &captured}, Context{OutputFile: "ctx.txt"})
	require.NoError(t, err)

	assert.Equal(t, "caught\n", captured.String())
	assert.Empty(t, r.stdout.String())
	exists, err := afero.Exists(r.Fs, "ignored.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRunPipelineCaptureAndStderr(t *testing.T) {
	r := newTestRunner(t, "sh", "tr")

	var captured bytes.Buffer
	_, err := r.RunPipeline([]Command{
		{Argv: []string{"sh", "-c", "echo first >&2; echo abc"}, ErrorFile: "first.txt"},
		{Argv: []string{"tr", "a-z", "A-Z"}, Stdout: &captured},
	}, Context{})
	require.NoError(t, err)

	assert.Equal(t, "ABC\n", captured.String())
	assert.Equal(t, "first\n", readFile(t, r.Fs, "first.txt"))
	assert.Empty(t, r.stdout.String())
}

func TestSetenv(t *testing.T) {
	r := newTestRunner(t, "sh")
	r.Env = []string{"KEEP=1", "MSHELL_TEST=old"}

	r.Setenv("MSHELL_TEST", "new")
	r.Setenv("ADDED", "yes")
	assert.Equal(t, []string{"KEEP=1", "MSHELL_TEST=new", "ADDED=yes"}, r.Env)

	_, err := r.Run(Command{Argv: []string{"sh", "-c", "echo $MSHELL_TEST $ADDED"}}, Context{})
	require.NoError(t, err)
	assert.Equal(t, "new yes\n", r.stdout.String())

	t.Run("starts from the process environment", func(t *testing.T) {
		r := newTestRunner(t)
		r.Setenv("MSHELL_TEST", "x")
		assert.Greater(t, len(r.Env), 1)
		assert.Contains(t, r.Env, "MSHELL_TEST=x")
	})
}

func TestErrOutput(t *testing.T) {
	r := newTestRunner(t)

	w, err := r.ErrOutput(Context{ErrorFile: "e.txt"})
	require.NoError(t, err)
	fmt.Fprint(w, "to file")
	require.NoError(t, w.Close())
	assert.Equal(t, "to file", readFile(t, r.Fs, "e.txt"))

	w, err = r.ErrOutput(Context{OutputFile: "o.txt"})
	require.NoError(t, err)
	fmt.Fprint(w, "to stderr")
	require.NoError(t, w.Close())
	assert.Equal(t, "to stderr", r.stderr.String())
}

func TestUnwrap(t *testing.T) {
	r := newTestRunner(t)

	w, err := r.output("", "", os.Stdout)
	require.NoError(t, err)
	assert.Same(t, os.Stdout, unwrap(w))

	w, err = r.output("f.txt", "", os.Stdout)
	require.NoError(t, err)
	assert.Equal(t, w, unwrap(w))
}
