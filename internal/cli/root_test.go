package cli

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, Streams{
		In:  strings.NewReader(stdin),
		Out: &stdout,
		Err: &stderr,
	})
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func numbered(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("line")
		b.WriteString(strings.Repeat("y", i))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestDefaultSamplesFourLines(t *testing.T) {
	res := run(t, numbered(10))
	require.Equal(t, 0, res.code, res.stderr)
	assert.Len(t, lines(res.stdout), 4)
	assert.Empty(t, res.stderr)
}

func TestCountIsReproducibleWithSeed(t *testing.T) {
	input := numbered(200)
	first := run(t, input, "-n", "5", "-s", "42")
	second := run(t, input, "--count=5", "--seed=42")

	require.Equal(t, 0, first.code)
	require.Equal(t, 0, second.code)
	assert.Equal(t, first.stdout, second.stdout)
	assert.Len(t, lines(first.stdout), 5)
}

func TestCountLargerThanInputPrintsEverything(t *testing.T) {
	input := numbered(3)
	res := run(t, input, "-n", "10")
	require.Equal(t, 0, res.code)
	assert.Equal(t, input, res.stdout)
}

func TestPercentAloneWritesToStdout(t *testing.T) {
	input := numbered(50)
	res := run(t, input, "-p", "100")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, input, res.stdout)

	res = run(t, input, "-p", "0")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestDealToFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	input := numbered(100)
	res := run(t, input, "-d", a+","+b, "-s", "3")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)

	gotA, err := os.ReadFile(a)
	require.NoError(t, err)
	gotB, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Len(t, append(lines(string(gotA)), lines(string(gotB))...), 100)
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "count with percent",
			args:    []string{"-n", "3", "-p", "5"},
			message: "mix of percent and count modes",
		},
		{
			name:    "count with deal",
			args:    []string{"-d", "a,b", "-n", "2"},
			message: "mix of percent and count modes",
		},
		{
			name:    "repeated deal",
			args:    []string{"-d", "a", "-d", "b"},
			message: "multiple -d arguments",
		},
		{
			name:    "zero count",
			args:    []string{"-n", "0"},
			message: "bad sample count",
		},
		{
			name:    "several percents without deal",
			args:    []string{"-p", "50,50"},
			message: "percent count does not match output count",
		},
		{
			name:    "percent over 100",
			args:    []string{"-p", "101"},
			message: "bad percentage",
		},
		{
			name:    "total over 100",
			args:    []string{"-d", "a,b", "-p", "60,60"},
			message: "total is over 100%",
		},
		{
			name:    "unknown flag",
			args:    []string{"-x"},
			message: "unknown shorthand flag",
		},
		{
			name:    "count not a number",
			args:    []string{"-n", "many"},
			message: "invalid argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "a\nb\n", tt.args...)
			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout, "nothing is read or written")
			assert.Contains(t, res.stderr, tt.message)
			assert.Contains(t, res.stderr, "Usage:")
		})
	}
}

func TestPercentRepeatedKeepsLast(t *testing.T) {
	input := numbered(20)
	res := run(t, input, "-p", "0", "-p", "100")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, input, res.stdout)
}

func TestUnreadableInputIsSkipped(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	require.NoError(t, os.WriteFile(good, []byte("one\ntwo\n"), 0o644))
	missing := filepath.Join(dir, "missing")

	res := run(t, "", "-n", "10", missing, good)
	require.Equal(t, 0, res.code)
	assert.Equal(t, "one\ntwo\n", res.stdout)
	assert.Contains(t, res.stderr, "Skipping unreadable input")
	assert.Contains(t, res.stderr, missing)
}

func TestVerboseLogsSummary(t *testing.T) {
	res := run(t, numbered(10), "-v", "-n", "2")
	require.Equal(t, 0, res.code)
	assert.Len(t, lines(res.stdout), 2)
	assert.Contains(t, res.stderr, "Sampling complete")
	assert.Contains(t, res.stderr, `"lines_read": 10`)
}

func TestHelpAndVersion(t *testing.T) {
	res := run(t, "", "-h")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stderr, "Usage:")
	assert.Contains(t, res.stderr, "--deal")
	assert.Empty(t, res.stdout)

	res = run(t, "", "--version")
	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stderr, Version)
}

func TestDealFlagRejectsSecondValue(t *testing.T) {
	var d dealFlag
	require.NoError(t, d.Set("a,b"))
	assert.Equal(t, "a,b", d.String())
	assert.Error(t, d.Set("c"))
	assert.Equal(t, "a,b", d.String())
}

func TestHugeCountOnShortInput(t *testing.T) {
	res := run(t, "a\nb\n", "-n", strconv.Itoa(math.MaxInt))
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "a\nb\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestEmptyPercentWithoutDealSelectsNothing(t *testing.T) {
	res := run(t, numbered(4), "-p", "")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Empty(t, res.stdout)
}

func TestVerboseFalseStaysQuiet(t *testing.T) {
	res := run(t, numbered(10), "--verbose=false", "-n", "2")
	require.Equal(t, 0, res.code)
	assert.Len(t, lines(res.stdout), 2)
	assert.Empty(t, res.stderr)
}
