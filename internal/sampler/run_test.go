package sampler

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRunCountMode(t *testing.T) {
	var stdout bytes.Buffer
	summary, err := Run(context.Background(), CountMode{Samples: 3},
		newSliceReader(numberedLines(10)...), &stdout, seeded(1))
	require.NoError(t, err)

	assert.Len(t, splitOutput(stdout.Bytes()), 3)
	assert.Equal(t, "count", summary.Mode)
	assert.Equal(t, int64(10), summary.LinesRead)
	assert.Equal(t, int64(3), summary.Emitted)
	assert.Equal(t, int64(7), summary.Discarded)
	assert.Equal(t, int64(3), summary.Retained)
	require.Len(t, summary.Sinks, 1)
	assert.Equal(t, int64(3), summary.Sinks[0].Lines)
}

func TestRunDealMode(t *testing.T) {
	table, err := BuildTable([]string{"a", "-"}, []string{"0.5", ""})
	require.NoError(t, err)

	opener := newMemOpener()
	var stdout bytes.Buffer
	summary, err := Run(context.Background(), DealMode{Table: table},
		newSliceReader(numberedLines(100)...), &stdout, seeded(2), WithFileOpener(opener.open))
	require.NoError(t, err)

	toFile := len(splitOutput(opener.files["a"].Bytes()))
	toStdout := len(splitOutput(stdout.Bytes()))
	assert.Equal(t, 100, toFile+toStdout)
	assert.Equal(t, "deal", summary.Mode)
	assert.Equal(t, int64(100), summary.Emitted)
	require.Len(t, summary.Sinks, 2)
	assert.Equal(t, int64(toFile), summary.Sinks[0].Lines)
	assert.Equal(t, int64(toStdout), summary.Sinks[1].Lines)
	assert.Equal(t, 1, opener.files["a"].closed)
}

func TestRunSameSeedSameDigests(t *testing.T) {
	run := func() *Summary {
		table, err := BuildTable([]string{"-"}, []string{"30"})
		require.NoError(t, err)
		summary, err := Run(context.Background(), DealMode{Table: table},
			newSliceReader(numberedLines(1000)...), &bytes.Buffer{}, seeded(77))
		require.NoError(t, err)
		return summary
	}

	assert.Equal(t, run().Sinks, run().Sinks)
}

func TestRunRejectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, CountMode{Samples: 1}, newSliceReader("a"), &bytes.Buffer{}, seeded(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunCountWriteFailure(t *testing.T) {
	_, err := Run(context.Background(), CountMode{Samples: 2},
		newSliceReader("a", "b"), &failingWriter{}, seeded(1))
	assert.ErrorIs(t, err, errDiskFull)
}

func TestSummaryLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	summary := &Summary{
		Mode:      "deal",
		LinesRead: 10,
		Emitted:   4,
		Discarded: 6,
		Sinks:     []SinkSummary{{Name: "stdout", Lines: 4, Bytes: 8, Digest: 0xabc}},
	}
	summary.Log(zap.New(core))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "Sampling complete", entries[0].Message)
	assert.Equal(t, int64(10), entries[0].ContextMap()["lines_read"])
	assert.Equal(t, "0000000000000abc", entries[1].ContextMap()["xxhash64"])
}

func TestRunLeavesCallerOptionsAlone(t *testing.T) {
	opts := make([]Option, 1, 4)
	opts[0] = WithLogger(zap.NewNop())

	_, err := Run(context.Background(), CountMode{Samples: 1}, newSliceReader("a"), &bytes.Buffer{}, seeded(1), opts...)
	require.NoError(t, err)

	// Spare capacity of the caller's slice is not written to
	spare := opts[:cap(opts)]
	for i := 1; i < len(spare); i++ {
		assert.Nil(t, spare[i], "option %d", i)
	}
}
