package sampler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/deepaksharma/sample/internal/linesource"
)

// sliceReader serves lines from memory, numbering them in order.
type sliceReader struct {
	lines []string
	next  int
}

func newSliceReader(lines ...string) *sliceReader {
	return &sliceReader{lines: lines}
}

func (r *sliceReader) Next() (linesource.Line, error) {
	if r.next >= len(r.lines) {
		return linesource.Line{}, io.EOF
	}
	line := linesource.Line{Bytes: []byte(r.lines[r.next]), Seq: uint64(r.next)}
	r.next++
	return line, nil
}

// numberedLines returns "1".."n".
func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprint(i + 1)
	}
	return lines
}

func splitOutput(b []byte) []string {
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

var errDiskFull = errors.New("disk full")

// failingWriter accepts limit bytes and then fails every write.
type failingWriter struct {
	limit int
	buf   bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		return 0, errDiskFull
	}
	return w.buf.Write(p)
}

func (w *failingWriter) Close() error { return nil }

// memFile is an in-memory output file that records whether it was closed.
type memFile struct {
	bytes.Buffer
	closed int
}

func (f *memFile) Close() error {
	f.closed++
	return nil
}

// memOpener hands out memFiles by name.
type memOpener struct {
	files map[string]*memFile
	fail  map[string]error
}

func newMemOpener() *memOpener {
	return &memOpener{files: map[string]*memFile{}, fail: map[string]error{}}
}

func (m *memOpener) open(name string) (io.WriteCloser, error) {
	if err, ok := m.fail[name]; ok {
		return nil, err
	}
	f := &memFile{}
	m.files[name] = f
	return f, nil
}
