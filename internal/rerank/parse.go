package rerank

import (
	"regexp"
	"strconv"
)

var numberPattern = regexp.MustCompile(`\d+`)

// ParseRankOrder extracts a candidate ordering from an LLM reply. Numbers
// in the reply are 1-based positions into the candidate list; the result
// is a 0-based permutation of 0..n-1. The parse is permissive: out-of-range
// numbers and duplicates are dropped, and any candidates the reply never
// mentioned are appended in their original order, so the result is always
// a complete permutation.
func ParseRankOrder(reply string, n int) []int {
	order := make([]int, 0, n)
	seen := make(map[int]bool, n)

	for _, match := range numberPattern.FindAllString(reply, -1) {
		num, err := strconv.Atoi(match)
		if err != nil || num < 1 || num > n {
			continue
		}
		idx := num - 1
		if seen[idx] {
			continue
		}
		seen[idx] = true
		order = append(order, idx)
	}

	for i := 0; i < n; i++ {
		if !seen[i] {
			order = append(order, i)
		}
	}
	return order
}
