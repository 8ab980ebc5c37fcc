package process

import (
	"bytes"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// truncatingFile buffers everything written to it and replaces the file
// contents on Close.
type truncatingFile struct {
	fs     afero.Fs
	path   string
	buf    bytes.Buffer
	closed bool
}

var _ io.WriteCloser = (*truncatingFile)(nil)

func (t *truncatingFile) Write(b []byte) (int, error) {
	return t.buf.Write(b)
}

func (t *truncatingFile) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	return afero.WriteFile(t.fs, t.path, t.buf.Bytes(), 0644)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// unwrap hands exec the inherited writer itself so an *os.File (a terminal)
// is passed to the child directly rather than through a copying goroutine.
func unwrap(w io.WriteCloser) io.Writer {
	if n, ok := w.(nopWriteCloser); ok {
		return n.Writer
	}
	return w
}

// ReadLine reads a single line from r one byte at a time so no input past the
// newline is consumed, leaving it for child processes sharing the reader.
// The line terminator (\n or \r\n) is removed. ok is false at end of input
// when nothing was read.
func ReadLine(r io.Reader) (line string, ok bool, err error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(b.String(), "\r"), true, nil
			}
			b.WriteByte(buf[0])
			continue
		}

		switch {
		case err == io.EOF && b.Len() == 0:
			return "", false, nil
		case err == io.EOF:
			return strings.TrimSuffix(b.String(), "\r"), true, nil
		case err != nil:
			return "", false, err
		}
	}
}
