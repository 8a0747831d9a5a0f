package util

import (
	"math"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// MatchKeywords returns the needles that appear in text as case-insensitive substrings.
func MatchKeywords(text string, needles []string) []string {
	lt := strings.ToLower(text)
	var out []string
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			out = append(out, n)
		}
	}
	return out
}

// Round2 rounds to two decimal places for presentation-stable scores.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
