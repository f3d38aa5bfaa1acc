// Package integration provides a framework for end-to-end testing of the
// sample command.
package integration

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/deepaksharma/sample/internal/cli"
)

// TestOption defines functional options for configuring the test framework
type TestOption func(*TestFramework)

// TestFramework runs the sample command in process against files in a
// scratch directory.
type TestFramework struct {
	logger         *zap.Logger
	dataDir        string
	cleanupDataDir bool

	// Run state
	stdin io.Reader
	runs  int
}

// RunResult is what a single invocation produced.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// StdoutLines splits the captured standard output into lines.
func (r *RunResult) StdoutLines() []string {
	return splitLines(r.Stdout)
}

// WithDataDir specifies a custom data directory for the test
func WithDataDir(dir string) TestOption {
	return func(tf *TestFramework) {
		tf.dataDir = dir
		tf.cleanupDataDir = false // Don't clean up custom directories
	}
}

// WithLogger specifies a custom logger for the test
func WithLogger(logger *zap.Logger) TestOption {
	return func(tf *TestFramework) {
		tf.logger = logger
	}
}

// WithStdin sets what the next runs read as standard input
func WithStdin(r io.Reader) TestOption {
	return func(tf *TestFramework) {
		tf.stdin = r
	}
}

// NewTestFramework creates a new test framework with the given options
func NewTestFramework(t zaptest.TestingT, options ...TestOption) (*TestFramework, error) {
	tf := &TestFramework{
		logger:         zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel)),
		cleanupDataDir: true,
		stdin:          strings.NewReader(""),
	}

	for _, opt := range options {
		opt(tf)
	}

	if tf.dataDir == "" {
		var err error
		tf.dataDir, err = os.MkdirTemp("", "sample-test")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	return tf, nil
}

// Path returns the absolute path of name inside the data directory.
func (tf *TestFramework) Path(name string) string {
	return filepath.Join(tf.dataDir, name)
}

// WriteInput writes lines, each newline terminated, to name and returns its path.
func (tf *TestFramework) WriteInput(name string, lines []string) (string, error) {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	path := tf.Path(name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write input %s: %w", name, err)
	}
	tf.logger.Debug("Input written", zap.String("path", path), zap.Int("lines", len(lines)))
	return path, nil
}

// ReadOutput returns the lines of a deal output; a missing file has none.
func (tf *TestFramework) ReadOutput(name string) ([]string, error) {
	content, err := os.ReadFile(tf.Path(name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read output %s: %w", name, err)
	}
	return splitLines(string(content)), nil
}

// SetStdin replaces standard input for the following runs.
func (tf *TestFramework) SetStdin(r io.Reader) {
	tf.stdin = r
}

// Run invokes the command with args and captures its streams.
func (tf *TestFramework) Run(args ...string) *RunResult {
	var stdout, stderr bytes.Buffer
	code := cli.Execute(args, cli.Streams{
		In:  tf.stdin,
		Out: &stdout,
		Err: &stderr,
	})
	tf.runs++

	tf.logger.Info("Command finished",
		zap.Int("run", tf.runs),
		zap.Strings("args", args),
		zap.Int("exit_code", code),
		zap.Int("stdout_bytes", stdout.Len()))
	if stderr.Len() > 0 {
		tf.logger.Debug("Command stderr", zap.String("stderr", stderr.String()))
	}

	return &RunResult{ExitCode: code, Stdout: stdout.String(), Stderr: stderr.String()}
}

// Cleanup cleans up all resources used by the test framework
func (tf *TestFramework) Cleanup() error {
	if tf.cleanupDataDir && tf.dataDir != "" {
		if err := os.RemoveAll(tf.dataDir); err != nil {
			return fmt.Errorf("failed to remove data directory: %w", err)
		}
	}
	return nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
