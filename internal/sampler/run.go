package sampler

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Run performs one complete pass over src in the given mode. Sampled output
// and the "-" deal target go to stdout. The context is only consulted before
// the pass starts; a pass is never interrupted.
func Run(ctx context.Context, mode Mode, src LineReader, stdout io.Writer, random *rand.Rand, opts ...Option) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	opts = append(append([]Option(nil), opts...), WithMetrics(o.metrics))

	switch m := mode.(type) {
	case CountMode:
		return runCount(m, src, stdout, random, o, opts)
	case DealMode:
		return runDeal(m, src, stdout, random, o, opts)
	default:
		return nil, fmt.Errorf("unsupported mode %T", mode)
	}
}

func runCount(m CountMode, src LineReader, stdout io.Writer, random *rand.Rand, o options, opts []Option) (*Summary, error) {
	o.logger.Debug("Sampling lines", zap.Int("count", m.Samples))

	reservoir, err := NewReservoir(m.Samples, random, opts...)
	if err != nil {
		return nil, err
	}
	if err := reservoir.Sample(src); err != nil {
		return nil, err
	}

	out := newWriterSink(StdoutTarget, stdout, nil)
	err = reservoir.Emit(out)
	err = multierr.Append(err, out.Close())
	if err != nil {
		return nil, err
	}

	o.metrics.GetEmittedCounter().Add(out.lines.Load())
	o.metrics.GetDiscardedCounter().Add(o.metrics.GetLinesReadCounter().Load() - out.lines.Load())

	summary := o.metrics.Summary(m)
	summary.Sinks = []SinkSummary{out.summary()}
	return summary, nil
}

func runDeal(m DealMode, src LineReader, stdout io.Writer, random *rand.Rand, o options, opts []Option) (*Summary, error) {
	o.logger.Debug("Dealing lines", zap.Int("outputs", len(m.Table.Entries)))

	sinks, err := OpenSinks(m.Table, stdout, opts...)
	if err != nil {
		return nil, err
	}

	dealer, err := NewDealer(m.Table, sinks, random, opts...)
	if err != nil {
		return nil, multierr.Append(err, sinks.Close())
	}

	err = dealer.Deal(src)
	err = multierr.Append(err, sinks.Close())
	if err != nil {
		return nil, err
	}

	summary := o.metrics.Summary(m)
	summary.Sinks = sinks.Summaries()
	return summary, nil
}
