package sampler

import (
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// MetricsManager holds the counters updated while a run is in progress
type MetricsManager struct {
	linesReadCounter    *atomic.Int64
	retainedGauge       *atomic.Int64
	replacementsCounter *atomic.Int64
	emittedCounter      *atomic.Int64
	discardedCounter    *atomic.Int64
}

// NewMetricsManager creates a new metrics manager
func NewMetricsManager() *MetricsManager {
	return &MetricsManager{
		linesReadCounter:    atomic.NewInt64(0),
		retainedGauge:       atomic.NewInt64(0),
		replacementsCounter: atomic.NewInt64(0),
		emittedCounter:      atomic.NewInt64(0),
		discardedCounter:    atomic.NewInt64(0),
	}
}

// GetLinesReadCounter returns the number of lines taken from the input
func (m *MetricsManager) GetLinesReadCounter() *atomic.Int64 {
	return m.linesReadCounter
}

// GetRetainedGauge returns the number of filled reservoir slots
func (m *MetricsManager) GetRetainedGauge() *atomic.Int64 {
	return m.retainedGauge
}

// GetReplacementsCounter returns the number of reservoir slot overwrites
func (m *MetricsManager) GetReplacementsCounter() *atomic.Int64 {
	return m.replacementsCounter
}

// GetEmittedCounter returns the number of lines written to a real output
func (m *MetricsManager) GetEmittedCounter() *atomic.Int64 {
	return m.emittedCounter
}

// GetDiscardedCounter returns the number of lines dropped
func (m *MetricsManager) GetDiscardedCounter() *atomic.Int64 {
	return m.discardedCounter
}

// SinkSummary describes what one output received.
type SinkSummary struct {
	Name  string
	Lines int64
	Bytes int64
	// Digest is the xxhash64 of every byte written, newlines included.
	Digest uint64
}

// Summary is the outcome of a completed run.
type Summary struct {
	Mode         string
	LinesRead    int64
	Emitted      int64
	Discarded    int64
	Retained     int64
	Replacements int64
	Sinks        []SinkSummary
}

// Summary snapshots the counters.
func (m *MetricsManager) Summary(mode Mode) *Summary {
	return &Summary{
		Mode:         mode.String(),
		LinesRead:    m.linesReadCounter.Load(),
		Emitted:      m.emittedCounter.Load(),
		Discarded:    m.discardedCounter.Load(),
		Retained:     m.retainedGauge.Load(),
		Replacements: m.replacementsCounter.Load(),
	}
}

// Log writes the summary at info level, and each sink at debug level.
func (s *Summary) Log(logger *zap.Logger) {
	logger.Info("Sampling complete",
		zap.String("mode", s.Mode),
		zap.Int64("lines_read", s.LinesRead),
		zap.Int64("emitted", s.Emitted),
		zap.Int64("discarded", s.Discarded),
		zap.Int64("retained", s.Retained),
		zap.Int64("replacements", s.Replacements))

	for _, sink := range s.Sinks {
		logger.Debug("Output",
			zap.String("name", sink.Name),
			zap.Int64("lines", sink.Lines),
			zap.Int64("bytes", sink.Bytes),
			zap.String("xxhash64", fmt.Sprintf("%016x", sink.Digest)))
	}
}
