package integration

import (
	"fmt"
)

// GenerateLines returns count distinct lines starting at startIdx.
func GenerateLines(startIdx, count int) []string {
	lines := make([]string, count)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%06d", startIdx+i)
	}
	return lines
}

// IsOrderedSubset reports whether sub appears in all, in the same order.
func IsOrderedSubset(all, sub []string) bool {
	j := 0
	for _, s := range all {
		if j < len(sub) && s == sub[j] {
			j++
		}
	}
	return j == len(sub)
}

// CountOccurrences counts every line across outputs.
func CountOccurrences(outputs ...[]string) map[string]int {
	counts := make(map[string]int)
	for _, out := range outputs {
		for _, l := range out {
			counts[l]++
		}
	}
	return counts
}

// VerifyPartition checks that every line of outputs comes from all exactly
// once and in input order. It returns how many input lines were dropped.
func VerifyPartition(all []string, outputs ...[]string) (int, error) {
	known := make(map[string]struct{}, len(all))
	for _, l := range all {
		known[l] = struct{}{}
	}

	for i, out := range outputs {
		if !IsOrderedSubset(all, out) {
			return 0, fmt.Errorf("output %d is not an ordered subset of the input", i)
		}
	}

	total := 0
	for l, n := range CountOccurrences(outputs...) {
		if _, ok := known[l]; !ok {
			return 0, fmt.Errorf("line %q was never input", l)
		}
		if n != 1 {
			return 0, fmt.Errorf("line %q written %d times", l, n)
		}
		total++
	}
	return len(all) - total, nil
}
