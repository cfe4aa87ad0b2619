package world

import (
	"math"
	"sort"
	"strings"
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

func upper(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

func ceilHalf(n int) int { return (n + 1) / 2 }

func sortStrings(xs []string) { sort.Strings(xs) }

func sortedIntKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
