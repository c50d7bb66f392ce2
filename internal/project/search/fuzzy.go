package search

import (
	"strings"
	"unicode"
)

// fuzzyScore scores text against pattern. Every pattern rune must appear
// in text in order. The result is 1.0 for an exact match and at most 0.95
// otherwise; positions are rune indices into text.
func fuzzyScore(pattern, text string, caseSensitive bool) (float64, []int) {
	if text == "" {
		return 0, nil
	}

	original := []rune(text)
	p, t := []rune(pattern), original
	if !caseSensitive {
		p = []rune(strings.ToLower(pattern))
		t = []rune(strings.ToLower(text))
	}
	if len(p) > len(t) {
		return 0, nil
	}
	if len(t) != len(original) {
		// lowering changed the rune count
		original = t
	}

	if string(p) == string(t) {
		positions := make([]int, len(p))
		for i := range positions {
			positions[i] = i
		}
		return 1.0, positions
	}

	matches := make([]int, 0, len(p))
	for i := 0; i < len(t) && len(matches) < len(p); i++ {
		if t[i] == p[len(matches)] {
			matches = append(matches, i)
		}
	}
	if len(matches) != len(p) {
		return 0, nil
	}

	base := float64(len(p)) / float64(len(t)) * 0.5

	consecutive := 0.0
	if len(p) > 1 {
		n := 0
		for i := 1; i < len(matches); i++ {
			if matches[i] == matches[i-1]+1 {
				n++
			}
		}
		consecutive = float64(n) / float64(len(p)-1) * 0.3
	}

	boundaries := 0
	for _, idx := range matches {
		if isWordBoundary(original, idx) {
			boundaries++
		}
	}
	boundary := float64(boundaries) / float64(len(p)) * 0.15

	position := (1.0 - float64(matches[0])/float64(len(t))) * 0.05

	return min(base+consecutive+boundary+position, 0.95), matches
}

// isWordBoundary reports whether the rune at idx starts a word: the first
// rune, one after a space or punctuation, or a camelCase hump.
func isWordBoundary(runes []rune, idx int) bool {
	if idx == 0 {
		return true
	}
	if idx >= len(runes) {
		return false
	}
	prev, cur := runes[idx-1], runes[idx]
	if unicode.IsSpace(prev) || unicode.IsPunct(prev) {
		return true
	}
	return unicode.IsLower(prev) && unicode.IsUpper(cur)
}
