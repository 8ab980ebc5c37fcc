package ttylog

import (
	"io"
	"log"
	"regexp"
	"sync"
	"time"
)

var (
	bareNewline = regexp.MustCompile(`\r?\n`)
)

// Stream identifies which standard stream an event was seen on.
type Stream int

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

// Event is a chunk of data that passed through one stream of a session.
type Event struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available event. It returns io.EOF if the source
	// has no more events.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewCRLFAdapter rewrites bare newlines as \r\n so output played back on a
// raw terminal returns the cursor to the first column.
func NewCRLFAdapter(next LogSink) LogSink {
	return func(e *Event) error {
		e.Data = bareNewline.ReplaceAll(e.Data, []byte("\r\n"))
		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.Stream == Stdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder forwards the data passing through wrapped streams to a LogSink.
type Recorder struct {
	mutex  sync.Mutex
	output LogSink
	now    func() time.Time
}

// NewRecorder creates a recorder that forwards all events to output.
func NewRecorder(output LogSink) *Recorder {
	return &Recorder{
		output: output,
		now:    time.Now,
	}
}

func (r *Recorder) record(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}

	// The sink may hold on to the event, data belongs to the caller.
	event := &Event{
		TimestampMicros: r.now().UnixMicro(),
		Stream:          stream,
		Data:            append([]byte(nil), data...),
	}

	r.mutex.Lock()
	err := r.output(event)
	r.mutex.Unlock()
	if err != nil {
		log.Print(err)
	}
}

// Writer records everything successfully written to wrapped as stream.
func (r *Recorder) Writer(stream Stream, wrapped io.Writer) io.Writer {
	return &recorderWriter{r: r, stream: stream, wrapped: wrapped}
}

type recorderWriter struct {
	r       *Recorder
	stream  Stream
	wrapped io.Writer
}

var _ io.Writer = (*recorderWriter)(nil)

func (rw *recorderWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(rw.stream, p[:n])
	return n, err
}
