// Package linesource reads newline-delimited records from an ordered list of
// named inputs as a single stream.
package linesource

import (
	"bufio"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"
)

// Stdin is the input name that refers to the standard input stream.
const Stdin = "-"

const readBufferSize = 64 * 1024

// Line is one input line with its trailing newline removed.
//
// Bytes is owned by the Source and is only valid until the next call to Next.
// Consumers that keep a line must copy it.
type Line struct {
	Bytes []byte
	// Seq is the position of the line in the overall input, across all inputs.
	Seq uint64
}

// Len returns the length of the line content in bytes.
func (l Line) Len() int {
	return len(l.Bytes)
}

// Option configures a Source.
type Option func(*Source)

// WithStdin sets the reader used for the "-" input.
func WithStdin(r io.Reader) Option {
	return func(s *Source) {
		s.stdin = r
	}
}

// WithLogger sets the logger used to report unreadable inputs.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// WithOpener replaces the function used to open named inputs.
func WithOpener(open func(name string) (io.ReadCloser, error)) Option {
	return func(s *Source) {
		s.open = open
	}
}

// Source iterates over the lines of several inputs in order. It is not
// restartable and not safe for concurrent use.
type Source struct {
	names []string
	next  int

	// Current input
	cur     io.ReadCloser
	curName string
	reader  *bufio.Reader

	buf     []byte
	seq     uint64
	skipped []string

	stdin  io.Reader
	open   func(name string) (io.ReadCloser, error)
	logger *zap.Logger
}

// New creates a Source over names. An empty list reads standard input.
func New(names []string, opts ...Option) *Source {
	if len(names) == 0 {
		names = []string{Stdin}
	}

	s := &Source{
		names:  names,
		stdin:  os.Stdin,
		open:   openFile,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Next returns the next line, or io.EOF once every input is exhausted.
//
// Inputs that cannot be opened, or fail part way through, are logged and
// skipped; they never end the stream early.
func (s *Source) Next() (Line, error) {
	for {
		if s.cur == nil && !s.openNext() {
			return Line{}, io.EOF
		}

		content, err := s.readLine()
		if err == nil {
			line := Line{Bytes: content, Seq: s.seq}
			s.seq++
			return line, nil
		}

		if !errors.Is(err, io.EOF) {
			s.logger.Warn("Failed to read input, skipping the rest of it",
				zap.String("input", s.curName),
				zap.Error(err))
			s.skipped = append(s.skipped, s.curName)
		}
		s.closeCurrent()
	}
}

// readLine reads one line into the shared buffer, growing it as needed.
// A final line without a newline is returned as a regular line.
func (s *Source) readLine() ([]byte, error) {
	s.buf = s.buf[:0]
	for {
		chunk, err := s.reader.ReadSlice('\n')
		s.buf = append(s.buf, chunk...)

		switch {
		case err == nil:
			return s.buf[:len(s.buf)-1], nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF) && len(s.buf) > 0:
			return s.buf, nil
		default:
			return nil, err
		}
	}
}

// openNext advances to the next input that can be opened.
func (s *Source) openNext() bool {
	for s.next < len(s.names) {
		name := s.names[s.next]
		s.next++

		if name == Stdin {
			s.cur = io.NopCloser(s.stdin)
		} else {
			f, err := s.open(name)
			if err != nil {
				s.logger.Warn("Skipping unreadable input",
					zap.String("input", name),
					zap.Error(err))
				s.skipped = append(s.skipped, name)
				continue
			}
			s.cur = f
		}

		s.curName = name
		if s.reader == nil {
			s.reader = bufio.NewReaderSize(s.cur, readBufferSize)
		} else {
			s.reader.Reset(s.cur)
		}
		s.logger.Debug("Reading input", zap.String("input", name))
		return true
	}

	return false
}

func (s *Source) closeCurrent() {
	if err := s.closeInput(); err != nil {
		s.logger.Warn("Failed to close input",
			zap.String("input", s.curName),
			zap.Error(err))
	}
}

func (s *Source) closeInput() error {
	if s.cur == nil {
		return nil
	}
	err := s.cur.Close()
	s.cur = nil
	return err
}

// Close releases the input currently being read, if any.
func (s *Source) Close() error {
	return s.closeInput()
}

// Seen returns the number of lines returned so far.
func (s *Source) Seen() uint64 {
	return s.seq
}

// Skipped returns the names of inputs that could not be read.
func (s *Source) Skipped() []string {
	return s.skipped
}
