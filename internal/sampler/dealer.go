package sampler

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/deepaksharma/sample/internal/linesource"
)

// Dealer routes each line to at most one output. A line goes to entry i of the
// table with probability equal to the width of bucket i; lines that land past
// the last threshold are dropped.
type Dealer struct {
	table  Table
	sinks  *SinkSet
	random *rand.Rand

	// Metrics
	linesRead *atomic.Int64
	emitted   *atomic.Int64
	discarded *atomic.Int64

	logger *zap.Logger
}

// NewDealer creates a dealer over an already opened sink set. A nil random
// source is seeded from the clock.
func NewDealer(table Table, sinks *SinkSet, random *rand.Rand, opts ...Option) (*Dealer, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if sinks == nil || sinks.Len() != len(table.Entries) {
		return nil, fmt.Errorf("sink set does not match a table of %d entries", len(table.Entries))
	}
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	o := newOptions(opts)
	return &Dealer{
		table:     table,
		sinks:     sinks,
		random:    random,
		linesRead: o.metrics.GetLinesReadCounter(),
		emitted:   o.metrics.GetEmittedCounter(),
		discarded: o.metrics.GetDiscardedCounter(),
		logger:    o.logger,
	}, nil
}

// DealLine draws once and writes line to the chosen output, if any. It
// returns the chosen table index, or -1 for a dropped line.
func (d *Dealer) DealLine(line linesource.Line) (int, error) {
	d.linesRead.Inc()

	i := d.table.Route(d.random.Float64())
	if i < 0 {
		d.discarded.Inc()
		return -1, nil
	}

	sink := d.sinks.At(i)
	if err := sink.WriteLine(line.Bytes); err != nil {
		return i, fmt.Errorf("failed to deal line %d: %w", line.Seq, err)
	}

	if _, ok := sink.(*nullSink); ok {
		d.discarded.Inc()
	} else {
		d.emitted.Inc()
	}
	return i, nil
}

// Deal routes every line of src. The first write failure stops the pass.
func (d *Dealer) Deal(src LineReader) error {
	for {
		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			d.logger.Debug("Input exhausted",
				zap.Int64("lines", d.linesRead.Load()),
				zap.Int64("emitted", d.emitted.Load()))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if _, err := d.DealLine(line); err != nil {
			return err
		}
	}
}
