package sampler

import (
	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	metrics *MetricsManager
	opener  FileOpener
}

// Option configures the samplers and the sinks they write to.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics shares a metrics manager between components of one run.
func WithMetrics(m *MetricsManager) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithFileOpener replaces the function used to open output files.
func WithFileOpener(opener FileOpener) Option {
	return func(o *options) {
		o.opener = opener
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.metrics == nil {
		o.metrics = NewMetricsManager()
	}
	if o.opener == nil {
		o.opener = openAppend
	}
	return o
}
