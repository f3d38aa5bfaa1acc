package sampler

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every configuration error. Configuration
// errors are detected before any input is read.
var ErrInvalidConfig = errors.New("invalid configuration")

var (
	ErrBadSampleCount = fmt.Errorf("%w: bad sample count", ErrInvalidConfig)
	ErrBadPercentage  = fmt.Errorf("%w: bad percentage", ErrInvalidConfig)
	ErrPercentCount   = fmt.Errorf("%w: percent count does not match output count", ErrInvalidConfig)
	ErrTotalOver100   = fmt.Errorf("%w: total is over 100%%", ErrInvalidConfig)
	ErrMixedModes     = fmt.Errorf("%w: mix of percent and count modes", ErrInvalidConfig)
	ErrMultipleDeal   = fmt.Errorf("%w: multiple -d arguments", ErrInvalidConfig)
	ErrNoOutputs      = fmt.Errorf("%w: no outputs", ErrInvalidConfig)
)
