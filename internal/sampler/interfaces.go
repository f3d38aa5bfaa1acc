package sampler

import (
	"io"

	"github.com/deepaksharma/sample/internal/linesource"
)

// LineReader defines the input side of both samplers
type LineReader interface {
	// Next returns the next line, or io.EOF at the end of the stream.
	// The returned bytes are only valid until the following call.
	Next() (linesource.Line, error)
}

// Sink defines a destination that dealt or sampled lines are written to
type Sink interface {
	// WriteLine writes line followed by a newline
	WriteLine(line []byte) error

	// Close flushes buffered output and releases the destination.
	// Calling Close more than once is allowed.
	Close() error

	// Name returns the target name the sink was opened for
	Name() string
}

// FileOpener opens a named output for appending
type FileOpener func(name string) (io.WriteCloser, error)
