package cmd

import (
	"io"

	"github.com/josephlewis42/mshell/core/ttylog"
	"github.com/spf13/cobra"
)

// session holds the standard streams a run uses, teeing the output streams
// into an asciicast recording when --record is set.
type session struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	closer io.Closer
}

func openSession(cmd *cobra.Command, title string) (*session, error) {
	s := &session{
		stdin:  cmd.InOrStdin(),
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	if recordPath == "" {
		return s, nil
	}

	fd, err := osFs.Create(recordPath)
	if err != nil {
		return nil, err
	}

	recorder := ttylog.NewRecorder(ttylog.NewAsciicastLogSink(fd, title))
	s.stdout = recorder.Writer(ttylog.Stdout, s.stdout)
	s.stderr = recorder.Writer(ttylog.Stderr, s.stderr)
	s.closer = fd
	return s, nil
}

func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
