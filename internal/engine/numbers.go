package engine

import (
	"strconv"
	"strings"
)

var wordNumbers = map[string]int{
	"zero":      0,
	"one":       1,
	"two":       2,
	"three":     3,
	"four":      4,
	"five":      5,
	"six":       6,
	"seven":     7,
	"eight":     8,
	"nine":      9,
	"ten":       10,
	"eleven":    11,
	"twelve":    12,
	"thirteen":  13,
	"fourteen":  14,
	"fifteen":   15,
	"sixteen":   16,
	"seventeen": 17,
	"eighteen":  18,
	"nineteen":  19,
	"twenty":    20,
	"thirty":    30,
	"forty":     40,
	"fifty":     50,
}

var wordOrdinals = map[string]int{
	"first":   1,
	"second":  2,
	"third":   3,
	"fourth":  4,
	"fifth":   5,
	"sixth":   6,
	"seventh": 7,
	"eighth":  8,
	"ninth":   9,
	"tenth":   10,
}

var ordinalSuffixes = []string{"th", "st", "nd", "rd"}

// parseNumeral reads a cardinal written in digits or words ("7", "seven", "twenty-five").
func parseNumeral(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	if n, ok := wordNumbers[s]; ok {
		return n, true
	}
	if tens, ones, found := strings.Cut(s, "-"); found {
		t, okT := wordNumbers[tens]
		o, okO := wordNumbers[ones]
		if okT && okO && t >= 20 && t%10 == 0 && o > 0 && o < 10 {
			return t + o, true
		}
	}
	return 0, false
}

// parseOrdinal reads an ordinal such as "15th", "3rd" or "first".
func parseOrdinal(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, ok := wordOrdinals[s]; ok {
		return n, true
	}
	for _, suffix := range ordinalSuffixes {
		if strings.HasSuffix(s, suffix) {
			if n, err := strconv.Atoi(strings.TrimSuffix(s, suffix)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// parseNumerals reads every token that parses as a cardinal, in order.
func parseNumerals(tokens []string) []int {
	var out []int
	for _, t := range tokens {
		if n, ok := parseNumeral(t); ok {
			out = append(out, n)
		}
	}
	return out
}
