package cmd

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	// Keep the user's own configuration out of the tests.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfgPath = ""
	lexOnly = false
	recordPath = ""

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	rootCmd.SilenceErrors = false

	err := rootCmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeScript(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "script.msh")
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	if err == nil {
		return 0
	}
	exitErr, ok := err.(*exitCodeError)
	require.True(t, ok, "unexpected error: %v", err)
	return exitErr.code
}

func TestRunScriptFile(t *testing.T) {
	script := writeScript(t, "1 2 + wl\n")

	res := runCLI(t, "", script)
	assert.Equal(t, 0, exitCode(t, res.err))
	assert.Equal(t, "3\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRunStdin(t *testing.T) {
	res := runCLI(t, `"from stdin" wl`)
	assert.Equal(t, 0, exitCode(t, res.err))
	assert.Equal(t, "from stdin\n", res.stdout)
}

func TestScriptArguments(t *testing.T) {
	script := writeScript(t, "$2 wl args len wl\n")

	res := runCLI(t, "", script, "first", "--not-a-flag")
	assert.Equal(t, 0, exitCode(t, res.err))
	assert.Equal(t, "--not-a-flag\n2\n", res.stdout)
}

func TestEvaluationFailure(t *testing.T) {
	script := writeScript(t, "1 wl\nmissing!\n2 wl\n")

	res := runCLI(t, "", script)
	assert.Equal(t, 1, exitCode(t, res.err))
	assert.Equal(t, "1\n", res.stdout)
	assert.Equal(t, script+":2:1: error: could not find variable missing, defined variables: \n", res.stderr)
}

func TestUnbalancedBracketFailure(t *testing.T) {
	res := runCLI(t, "[1 2")
	assert.Equal(t, 1, exitCode(t, res.err))
	assert.Contains(t, res.stderr, "<stdin>:")
	assert.Contains(t, res.stderr, "unbalanced bracket")
}

func TestMissingScript(t *testing.T) {
	res := runCLI(t, "", filepath.Join(t.TempDir(), "nope.msh"))
	assert.Equal(t, 1, exitCode(t, res.err))
	assert.Contains(t, res.stderr, "error: ")
}

func TestLex(t *testing.T) {
	res := runCLI(t, "@x 1\n\"unterminated", "--lex")
	assert.NoError(t, res.err)
	assert.Equal(t, "1:1:VARSTORE @x\n1:4:INTEGER 1\n2:1:ERROR \"unterminated\n", res.stdout)
}

func TestStopOnErrorConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "config.yaml"), []byte("stop_on_error: true\n"), 0644))
	script := writeScript(t, "[sh -c \"exit 5\"] ;\nnever wl\n")

	res := runCLI(t, "", "--config", dir, script)
	if strings.Contains(res.stderr, "executable file not found") {
		t.Skip("sh not available")
	}
	assert.Equal(t, 5, exitCode(t, res.err))
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, ":1:18: error: process exited with code 5")
}

func TestBadConfig(t *testing.T) {
	res := runCLI(t, "", "--config", filepath.Join(t.TempDir(), "missing"), "-")
	assert.Error(t, res.err)
	_, isExit := res.err.(*exitCodeError)
	assert.False(t, isExit)
}

func TestInitCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")

	res := runCLI(t, "", "init", dir)
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "wrote default configuration")

	res = runCLI(t, "1 wl", "--config", dir)
	assert.NoError(t, res.err)
	assert.Equal(t, "1\n", res.stdout)
}

func TestBuiltinsCommand(t *testing.T) {
	res := runCLI(t, "", "builtins")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Keywords:")
	assert.Contains(t, res.stdout, "  dup ")
	assert.Contains(t, res.stdout, "  loop ")
}

func TestRecordAndReplay(t *testing.T) {
	cast := filepath.Join(t.TempDir(), "session.cast")
	script := writeScript(t, "\"out\" wl \"err\" wle\n")

	res := runCLI(t, "", "--record", cast, script)
	require.NoError(t, res.err)
	assert.Equal(t, "out\n", res.stdout)
	assert.Equal(t, "err\n", res.stderr)

	recording, err := ioutil.ReadFile(cast)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(recording)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"version":2`)
	assert.Contains(t, lines[1], `"o","out\n"]`)
	assert.Contains(t, lines[2], `"o","err\n"]`)

	res = runCLI(t, "", "replay", "--max-delay", "0", cast)
	require.NoError(t, res.err)
	assert.Equal(t, "out\r\nerr\r\n", res.stdout)
}
