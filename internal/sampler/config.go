package sampler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"

	"github.com/deepaksharma/sample/internal/linesource"
)

// Configuration keys
const (
	KeyCount   = "count"
	KeyPercent = "percent"
	KeyDeal    = "deal"
	KeySeed    = "seed"
	KeyVerbose = "verbose"
	KeyInputs  = "inputs"
)

// Config defines the settings of one sampling run.
type Config struct {
	// Count is the number of lines to keep in count mode
	Count int `mapstructure:"count"`

	// Percent is a comma separated list of fractions or percentages
	Percent string `mapstructure:"percent"`

	// Deal is a comma separated list of outputs to deal lines to
	Deal string `mapstructure:"deal"`

	// Seed seeds the random source; defaults to the current time
	Seed int64 `mapstructure:"seed"`

	// Verbose enables debug logging and the run summary
	Verbose bool `mapstructure:"verbose"`

	// Inputs are read in order; "-" is standard input
	Inputs []string `mapstructure:"inputs"`

	countSet   bool
	percentSet bool
	dealSet    bool
}

// createDefaultConfig returns the defaults that explicit settings are layered on.
func createDefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		KeyCount:   DefaultSampleCount,
		KeySeed:    time.Now().UnixNano(),
		KeyVerbose: false,
		KeyInputs:  []string{linesource.Stdin},
	}
}

// LoadConfig layers explicitly supplied settings over the defaults. Only keys
// present in overrides count as supplied when deciding the mode.
func LoadConfig(overrides map[string]interface{}) (*Config, error) {
	if overrides == nil {
		overrides = map[string]interface{}{}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(createDefaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "mapstructure"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	_, cfg.countSet = overrides[KeyCount]
	_, cfg.percentSet = overrides[KeyPercent]
	_, cfg.dealSet = overrides[KeyDeal]

	if len(cfg.Inputs) == 0 {
		cfg.Inputs = []string{linesource.Stdin}
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.countSet && (cfg.percentSet || cfg.dealSet) {
		return ErrMixedModes
	}
	if cfg.Count < 1 {
		return fmt.Errorf("%w: %d", ErrBadSampleCount, cfg.Count)
	}
	return nil
}

// Mode validates the configuration and resolves it to a sampling mode. Percent
// or deal settings select DealMode; everything else is CountMode.
func (cfg *Config) Mode() (Mode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !cfg.percentSet && !cfg.dealSet {
		return CountMode{Samples: cfg.Count}, nil
	}

	var targets, percents []string
	if cfg.dealSet {
		targets = strings.Split(cfg.Deal, ",")
	}
	switch {
	case cfg.percentSet && !cfg.dealSet && strings.TrimSpace(cfg.Percent) == "":
		// Without outputs there is no remainder to take: empty is 0%.
		percents = []string{"0"}
	case cfg.percentSet:
		percents = strings.Split(cfg.Percent, ",")
	}

	table, err := BuildTable(targets, percents)
	if err != nil {
		return nil, err
	}
	return DealMode{Table: table}, nil
}

// NewRand returns the random source for the run, seeded once.
func (cfg *Config) NewRand() *rand.Rand {
	return rand.New(rand.NewSource(cfg.Seed))
}
