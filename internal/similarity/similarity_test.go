package similarity

import (
	"math"
	"testing"
)

func TestScoreIdenticalStrings(t *testing.T) {
	for _, input := range []string{"name", "Roll No.", "cgpa", ""} {
		if got := Score(input, input); got != 1.0 {
			t.Fatalf("expected identical strings to score 1.0, got %v for %q", got, input)
		}
	}
}

func TestScoreDisjointSingleRunes(t *testing.T) {
	if got := Score("a", "b"); got >= 1.0 {
		t.Fatalf("expected disjoint strings to score below 1.0, got %v", got)
	}
	if got := Score("a", "b"); got != 0 {
		t.Fatalf("expected fully disjoint length-1 strings to score 0, got %v", got)
	}
}

func TestScoreIgnoresCaseAndPunctuation(t *testing.T) {
	if got := Score("Roll No.", "roll_no"); got != 1.0 {
		t.Fatalf("expected normalized headers to match exactly, got %v", got)
	}
}

func TestScoreKnownDistance(t *testing.T) {
	// lev("kitten","sitting") = 3, max len 7.
	want := 1.0 - 3.0/7.0
	if got := Score("kitten", "sitting"); math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestScoreEmptyAgainstNonEmpty(t *testing.T) {
	if got := Score("", "name"); got != 0 {
		t.Fatalf("expected empty vs non-empty to score 0, got %v", got)
	}
}
