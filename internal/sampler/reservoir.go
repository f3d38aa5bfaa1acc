package sampler

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/deepaksharma/sample/internal/linesource"
)

// DefaultSampleCount is the sample size used when none is given.
const DefaultSampleCount = 4

// initialSlots caps the slots reserved up front; the rest are appended as
// lines arrive, so a large sample size over a short input stays small.
const initialSlots = 1024

// slot is one reservoir position. buf is reused across occupants so its
// capacity only grows; len(buf) is the current line's length.
type slot struct {
	buf []byte
	seq uint64
}

// Reservoir keeps a uniform random sample of a fixed number of lines from a
// stream of unknown length, using memory proportional to the sample size.
type Reservoir struct {
	slots []slot // filled slots, never more than size
	size  int
	seen  int64

	random *rand.Rand

	// Metrics
	linesRead    *atomic.Int64
	retained     *atomic.Int64
	replacements *atomic.Int64

	logger *zap.Logger
}

// NewReservoir creates a reservoir holding up to size lines. A nil random
// source is seeded from the clock.
func NewReservoir(size int, random *rand.Rand, opts ...Option) (*Reservoir, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrBadSampleCount, size)
	}
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	o := newOptions(opts)
	return &Reservoir{
		slots:        make([]slot, 0, min(size, initialSlots)),
		size:         size,
		random:       random,
		linesRead:    o.metrics.GetLinesReadCounter(),
		retained:     o.metrics.GetRetainedGauge(),
		replacements: o.metrics.GetReplacementsCounter(),
		logger:       o.logger,
	}, nil
}

// Add offers one line to the reservoir.
//
// This implements Algorithm R (Knuth 3.4.2):
//  1. The first k lines fill slots 0..k-1 in order.
//  2. For the n-th line (n > k), draw j uniformly from [0, n);
//     if j < k the line replaces slot j, otherwise it is dropped.
//
// After n lines every line seen so far is in the reservoir with
// probability k/n.
func (r *Reservoir) Add(line linesource.Line) {
	r.seen++
	r.linesRead.Inc()

	if len(r.slots) < r.size {
		r.slots = append(r.slots, slot{})
		r.keep(len(r.slots)-1, line)
		r.retained.Inc()
		return
	}

	if j := r.random.Int63n(r.seen); j < int64(r.size) {
		r.keep(int(j), line)
		r.replacements.Inc()
	}
}

// keep copies line into slot i.
func (r *Reservoir) keep(i int, line linesource.Line) {
	s := &r.slots[i]
	s.buf = append(s.buf[:0], line.Bytes...)
	s.seq = line.Seq
}

// Sample drains src into the reservoir.
func (r *Reservoir) Sample(src LineReader) error {
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			r.logger.Debug("Input exhausted",
				zap.Int64("lines", r.seen),
				zap.Int("retained", r.Size()))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		r.Add(line)
	}
}

// ordered returns the filled slots sorted by original input position.
func (r *Reservoir) ordered() []*slot {
	out := make([]*slot, len(r.slots))
	for i := range r.slots {
		out[i] = &r.slots[i]
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].seq < out[b].seq
	})
	return out
}

// Emit writes the sampled lines to sink in input order.
func (r *Reservoir) Emit(sink Sink) error {
	for _, s := range r.ordered() {
		if err := sink.WriteLine(s.buf); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of filled slots.
func (r *Reservoir) Size() int {
	return len(r.slots)
}

// MaxSize returns the sample size the reservoir was created with.
func (r *Reservoir) MaxSize() int {
	return r.size
}

// Seen returns the number of lines offered so far.
func (r *Reservoir) Seen() int64 {
	return r.seen
}
