// Package similarity scores how close a raw spreadsheet header is to a
// canonical field name.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Score returns a normalized similarity in [0,1] between two strings:
// 1 - editDistance/maxLen over case-normalized, non-alphanumeric-stripped
// inputs. Two empty inputs score 1.0.
func Score(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(na, nb)
	return 1.0 - float64(distance)/float64(maxLen)
}

// Normalize lowercases the input and strips every non-alphanumeric rune.
// Headers like "Roll No." and "roll_no" collapse to the same form.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
