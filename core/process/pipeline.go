package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyPipeline is returned when asked to run a pipeline with no stages.
var ErrEmptyPipeline = errors.New("cannot execute an empty pipe")

// RunPipeline connects stages stdout to stdin and runs them concurrently. The
// first stage honors its input redirect, the last stage its output redirect
// or capture (or the context override). Every stage honors its stderr
// redirect. The exit code is the last stage's.
//
// Interior stdin and stdout redirects are ignored.
func (r *Runner) RunPipeline(stages []Command, ctx Context) (int, error) {
	switch len(stages) {
	case 0:
		return 1, ErrEmptyPipeline
	case 1:
		return r.Run(stages[0], ctx)
	}

	cmds := make([]*exec.Cmd, len(stages))
	for i, stage := range stages {
		c, err := r.command(stage)
		if err != nil {
			return 1, fmt.Errorf("pipe stage %d: %w", i, err)
		}
		cmds[i] = c
	}

	first, last := stages[0], stages[len(stages)-1]

	stdin, err := r.input(first.InputFile, ctx)
	if err != nil {
		return 1, err
	}
	cmds[0].Stdin = stdin

	out, err := r.stdout(last, ctx)
	if err != nil {
		return 1, err
	}
	defer out.Close()
	cmds[len(cmds)-1].Stdout = unwrap(out)

	errOuts := make([]io.WriteCloser, len(stages))
	defer func() {
		for _, w := range errOuts {
			if w != nil {
				w.Close()
			}
		}
	}()
	for i, stage := range stages {
		w, err := r.stderr(stage, ctx)
		if err != nil {
			return 1, err
		}
		errOuts[i] = w
		cmds[i].Stderr = unwrap(w)
	}

	// The parent's copies of the pipe ends must be closed once the children
	// own them, otherwise readers never see EOF.
	var parentEnds []io.Closer
	closeParentEnds := func() {
		for _, c := range parentEnds {
			c.Close()
		}
		parentEnds = nil
	}
	defer closeParentEnds()

	for i := 0; i < len(cmds)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			return 1, fmt.Errorf("creating pipe: %w", err)
		}
		parentEnds = append(parentEnds, pr, pw)
		cmds[i].Stdout = pw
		cmds[i+1].Stdin = pr
	}

	for i, c := range cmds {
		r.logf("exec: pipe stage %d/%d %q", i+1, len(cmds), stages[i].Argv)
		if err := c.Start(); err != nil {
			closeParentEnds()
			killAll(cmds[:i])
			return 1, fmt.Errorf("running %s: %w", stages[i].Argv[0], err)
		}
	}
	closeParentEnds()

	codes := make([]int, len(cmds))
	var g errgroup.Group
	for i, c := range cmds {
		i, c := i, c
		g.Go(func() error {
			code, err := exitStatus(c.Wait())
			codes[i] = code
			if err != nil {
				return fmt.Errorf("pipe stage %d (%s): %w", i, stages[i].Argv[0], err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 1, err
	}

	if err := out.Close(); err != nil {
		return 1, err
	}
	for _, w := range errOuts {
		if err := w.Close(); err != nil {
			return 1, err
		}
	}
	return codes[len(codes)-1], nil
}

func killAll(cmds []*exec.Cmd) {
	for _, c := range cmds {
		if c.Process != nil {
			_ = c.Process.Kill()
			_ = c.Wait()
		}
	}
}
