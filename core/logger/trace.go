package logger

import (
	"io"
	"io/ioutil"
	"log"
)

// NewTrace creates the logger used to trace launched processes. Output is
// discarded unless enabled.
func NewTrace(w io.Writer, enabled bool) *log.Logger {
	if !enabled {
		return log.New(ioutil.Discard, "", 0)
	}
	return log.New(w, "[trace] ", 0)
}
