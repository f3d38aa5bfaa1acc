package sampler

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const writeBufferSize = 64 * 1024

var newline = []byte{'\n'}

func openAppend(name string) (io.WriteCloser, error) {
	return os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// nullSink accepts lines and drops them.
type nullSink struct {
	lines atomic.Int64
}

var _ Sink = (*nullSink)(nil)

func (s *nullSink) WriteLine([]byte) error {
	s.lines.Inc()
	return nil
}

func (s *nullSink) Close() error { return nil }

func (s *nullSink) Name() string { return DiscardTarget }

func (s *nullSink) summary() SinkSummary {
	return SinkSummary{Name: "(discard)", Lines: s.lines.Load()}
}

// writerSink writes lines through a buffer and keeps a running digest of
// everything it wrote.
type writerSink struct {
	name   string
	w      *bufio.Writer
	closer io.Closer // nil for streams the sink does not own, such as stdout
	closed bool

	digest *xxhash.Digest
	lines  atomic.Int64
	bytes  atomic.Int64
}

var _ Sink = (*writerSink)(nil)

func newWriterSink(name string, w io.Writer, closer io.Closer) *writerSink {
	return &writerSink{
		name:   name,
		w:      bufio.NewWriterSize(w, writeBufferSize),
		closer: closer,
		digest: xxhash.New(),
	}
}

func (s *writerSink) WriteLine(line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.displayName(), err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write to %s: %w", s.displayName(), err)
	}

	_, _ = s.digest.Write(line)
	_, _ = s.digest.Write(newline)
	s.lines.Inc()
	s.bytes.Add(int64(len(line) + 1))
	return nil
}

func (s *writerSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if ferr := s.w.Flush(); ferr != nil {
		err = fmt.Errorf("failed to flush %s: %w", s.displayName(), ferr)
	}
	if s.closer != nil {
		if cerr := s.closer.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close %s: %w", s.displayName(), cerr))
		}
	}
	return err
}

func (s *writerSink) Name() string { return s.name }

func (s *writerSink) displayName() string {
	if s.name == StdoutTarget {
		return "stdout"
	}
	return s.name
}

func (s *writerSink) summary() SinkSummary {
	return SinkSummary{
		Name:   s.displayName(),
		Lines:  s.lines.Load(),
		Bytes:  s.bytes.Load(),
		Digest: s.digest.Sum64(),
	}
}

// SinkSet holds the sinks for a Table. Entries that name the same target share
// one sink, so output to a repeated target stays in input order.
type SinkSet struct {
	sinks    []Sink
	distinct []Sink
	logger   *zap.Logger
}

// OpenSinks opens one sink per table entry: the null sink for the discard
// target, stdout for "-", and an appending file for anything else. If any file
// cannot be opened the sinks opened so far are closed and the error returned.
func OpenSinks(t Table, stdout io.Writer, opts ...Option) (*SinkSet, error) {
	o := newOptions(opts)
	set := &SinkSet{
		sinks:  make([]Sink, len(t.Entries)),
		logger: o.logger,
	}

	byTarget := make(map[string]Sink, len(t.Entries))
	for i, e := range t.Entries {
		if s, ok := byTarget[e.Target]; ok {
			set.sinks[i] = s
			continue
		}

		var s Sink
		switch e.Target {
		case DiscardTarget:
			s = &nullSink{}
		case StdoutTarget:
			s = newWriterSink(StdoutTarget, stdout, nil)
		default:
			f, err := o.opener(e.Target)
			if err != nil {
				err = fmt.Errorf("failed to open output %s: %w", e.Target, err)
				return nil, multierr.Append(err, set.Close())
			}
			s = newWriterSink(e.Target, f, f)
		}

		o.logger.Debug("Opened output",
			zap.String("target", e.Target),
			zap.Float64("threshold", e.Threshold))
		byTarget[e.Target] = s
		set.sinks[i] = s
		set.distinct = append(set.distinct, s)
	}

	return set, nil
}

// Len returns the number of table entries the set covers.
func (s *SinkSet) Len() int {
	return len(s.sinks)
}

// At returns the sink for table entry i.
func (s *SinkSet) At(i int) Sink {
	return s.sinks[i]
}

// Close closes every distinct sink once and reports all failures.
func (s *SinkSet) Close() error {
	var err error
	for _, sink := range s.distinct {
		err = multierr.Append(err, sink.Close())
	}
	return err
}

// Summaries describes each distinct sink in the order it was opened.
func (s *SinkSet) Summaries() []SinkSummary {
	out := make([]SinkSummary, 0, len(s.distinct))
	for _, sink := range s.distinct {
		switch v := sink.(type) {
		case *writerSink:
			out = append(out, v.summary())
		case *nullSink:
			out = append(out, v.summary())
		}
	}
	return out
}
