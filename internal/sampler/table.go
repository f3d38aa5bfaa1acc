package sampler

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// StdoutTarget names the standard output stream.
	StdoutTarget = "-"

	// DiscardTarget names the null sink. It is what an empty -d field means.
	DiscardTarget = ""

	// Slack allowed on the final threshold for floating point accumulation.
	thresholdEpsilon = 1e-9
)

// TableEntry is one bucket of a Table. The bucket covers
// (previous Threshold, Threshold].
type TableEntry struct {
	Threshold float64
	Target    string
}

// Table is an ordered list of cumulative probability thresholds, each paired
// with an output target.
type Table struct {
	Entries []TableEntry
}

// BuildTable constructs the threshold table for the given output targets and
// percentage fields. It performs no I/O and uses no randomness, so the same
// arguments always yield the same table.
//
// A nil targets slice means a single stdout target. A nil percents slice
// divides the unit interval evenly. A single percentage with several targets
// is projected onto each following target, so every target gets the same width.
// Otherwise there must be one percentage per target. An empty percentage field
// takes whatever mass remains.
func BuildTable(targets, percents []string) (Table, error) {
	if len(targets) == 0 {
		targets = []string{StdoutTarget}
	}

	entries := make([]TableEntry, len(targets))
	for i, target := range targets {
		entries[i].Target = target
	}

	if len(percents) == 0 {
		total := 0.0
		for i := range entries {
			total += 1.0 / float64(len(entries))
			entries[i].Threshold = total
		}
		return Table{Entries: entries}, nil
	}

	if len(percents) != 1 && len(percents) != len(entries) {
		return Table{}, fmt.Errorf("%w: %d percentages for %d outputs",
			ErrPercentCount, len(percents), len(entries))
	}

	total := 0.0
	for i, field := range percents {
		v, err := parsePercent(field, total)
		if err != nil {
			return Table{}, err
		}
		total += v
		entries[i].Threshold = total
	}

	if len(percents) == 1 {
		for i := 1; i < len(entries); i++ {
			total += entries[0].Threshold
			entries[i].Threshold = total
		}
	}

	if total > 1.0+thresholdEpsilon {
		return Table{}, fmt.Errorf("%w: %g%%", ErrTotalOver100, total*100)
	}

	t := Table{Entries: entries}
	return t, t.Validate()
}

// parsePercent accepts a fraction (<= 1) or a percentage (> 1, <= 100).
// An empty field is the mass left over after total.
func parsePercent(field string, total float64) (float64, error) {
	var v float64
	if field == "" {
		v = 1.0 - total
	} else {
		var err error
		v, err = strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadPercentage, field)
		}
	}

	if math.IsNaN(v) || v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: %q", ErrBadPercentage, field)
	}
	if v > 1.0 {
		v /= 100.0
	}
	return v, nil
}

// Validate checks the table invariants: at least one entry, non-decreasing
// thresholds, and a final threshold no greater than one.
func (t Table) Validate() error {
	if len(t.Entries) == 0 {
		return ErrNoOutputs
	}

	prev := 0.0
	for i, e := range t.Entries {
		if math.IsNaN(e.Threshold) || e.Threshold < prev {
			return fmt.Errorf("%w: threshold %d (%g) is below the previous one (%g)",
				ErrInvalidConfig, i, e.Threshold, prev)
		}
		prev = e.Threshold
	}

	if prev > 1.0+thresholdEpsilon {
		return fmt.Errorf("%w: %g%%", ErrTotalOver100, prev*100)
	}
	return nil
}

// Route returns the index of the first entry whose threshold is greater than
// v, or -1 when v falls past the last threshold and the line is discarded.
func (t Table) Route(v float64) int {
	i := sort.Search(len(t.Entries), func(i int) bool {
		return t.Entries[i].Threshold > v
	})
	if i == len(t.Entries) {
		return -1
	}
	return i
}

// Targets returns the output target of each entry, in order.
func (t Table) Targets() []string {
	targets := make([]string, len(t.Entries))
	for i, e := range t.Entries {
		targets[i] = e.Target
	}
	return targets
}
