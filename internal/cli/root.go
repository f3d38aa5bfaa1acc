// Package cli implements the sample command line.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deepaksharma/sample/internal/linesource"
	"github.com/deepaksharma/sample/internal/sampler"
)

// Version of the sample command.
const Version = "0.2.0"

const longHelp = `Randomly sample lines from the input files, or standard input.

By default a uniform sample of -n lines is printed in input order. With -p
and/or -d every line is instead dealt, independently, to at most one output:

  -p 5              print about 5% of lines
  -p 0.05           the same, as a fraction
  -d a,b,c          deal lines evenly to three files
  -d a,b -p 10,20   10% to a, 20% to b, drop the rest
  -d a,b -p 10      10% to each file
  -d a, -p 0,       an empty -d field discards; an empty -p field is the remainder

Files named with -d are appended to. "-" means standard output for -d and
standard input for input files.`

// Streams are the standard streams the command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// dealFlag is a string flag that may only be given once.
type dealFlag struct {
	value string
	set   bool
}

var _ pflag.Value = (*dealFlag)(nil)

func (d *dealFlag) String() string { return d.value }

func (d *dealFlag) Set(v string) error {
	if d.set {
		return sampler.ErrMultipleDeal
	}
	d.value, d.set = v, true
	return nil
}

func (d *dealFlag) Type() string { return "files" }

type flagValues struct {
	count   int
	percent string
	deal    dealFlag
	seed    int64
	verbose bool
}

// NewRootCommand builds the sample command.
func NewRootCommand(streams Streams) *cobra.Command {
	fv := &flagValues{}

	cmd := &cobra.Command{
		Use:           "sample [flags] [FILE ...]",
		Short:         "Randomly sample or deal lines of input",
		Long:          longHelp,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd, fv, args, streams)
		},
	}
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Err)
	cmd.SetErr(streams.Err)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		if errors.Is(err, sampler.ErrInvalidConfig) {
			return err
		}
		return fmt.Errorf("%w: %v", sampler.ErrInvalidConfig, err)
	})

	f := cmd.Flags()
	f.SortFlags = false
	f.IntVarP(&fv.count, sampler.KeyCount, "n", sampler.DefaultSampleCount, "sample `COUNT` lines")
	f.StringVarP(&fv.percent, sampler.KeyPercent, "p", "", "sample `PERC` percent of lines (',' separated with -d); >1 is a percentage")
	f.VarP(&fv.deal, sampler.KeyDeal, "d", "deal lines randomly to `FILES` (',' separated)")
	f.Int64VarP(&fv.seed, sampler.KeySeed, "s", 0, "random `SEED` (default: based on the current time)")
	f.BoolVarP(&fv.verbose, sampler.KeyVerbose, "v", false, "log debug output and a summary to stderr")

	return cmd
}

func runSample(cmd *cobra.Command, fv *flagValues, args []string, streams Streams) error {
	overrides := map[string]interface{}{}
	flags := cmd.Flags()
	if flags.Changed(sampler.KeyCount) {
		overrides[sampler.KeyCount] = fv.count
	}
	if flags.Changed(sampler.KeyPercent) {
		overrides[sampler.KeyPercent] = fv.percent
	}
	if fv.deal.set {
		overrides[sampler.KeyDeal] = fv.deal.value
	}
	if flags.Changed(sampler.KeySeed) {
		overrides[sampler.KeySeed] = fv.seed
	}
	if flags.Changed(sampler.KeyVerbose) {
		overrides[sampler.KeyVerbose] = fv.verbose
	}
	if len(args) > 0 {
		overrides[sampler.KeyInputs] = args
	}

	cfg, err := sampler.LoadConfig(overrides)
	if err != nil {
		return err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return err
	}

	logger := newLogger(streams.Err, cfg.Verbose)
	defer func() { _ = logger.Sync() }()
	logger.Debug("Configuration loaded",
		zap.Stringer("mode", mode),
		zap.Int64("seed", cfg.Seed),
		zap.Strings("inputs", cfg.Inputs))

	src := linesource.New(cfg.Inputs,
		linesource.WithStdin(streams.In),
		linesource.WithLogger(logger))
	defer src.Close()

	summary, err := sampler.Run(cmd.Context(), mode, src, streams.Out, cfg.NewRand(),
		sampler.WithLogger(logger))
	if err != nil {
		logger.Error("Sampling failed", zap.Error(err))
		return err
	}

	summary.Log(logger)
	return nil
}

// newLogger writes human readable log lines to w: warnings and errors by
// default, everything when verbose.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core).Named("sample")
}

// Execute runs the command with args and returns the process exit code:
// 0 on success, 1 on any configuration or fatal error.
func Execute(args []string, streams Streams) int {
	cmd := NewRootCommand(streams)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, sampler.ErrInvalidConfig) {
			fmt.Fprintf(streams.Err, "Error: %v\n\n", err)
			fmt.Fprint(streams.Err, cmd.UsageString())
		}
		return 1
	}
	return 0
}
