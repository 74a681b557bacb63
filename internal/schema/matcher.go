// Package schema proposes mappings from raw spreadsheet headers to canonical
// fields. Confident matches map immediately; everything else is surfaced as a
// pending mapping for the caller to confirm or skip.
package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/similarity"
	"github.com/sheetsync/reconcile/internal/validate"
)

// DefaultThreshold is the acceptance cutoff for fuzzy header matches.
const DefaultThreshold = 0.6

// containmentScore is the confidence assigned when one normalized name fully
// contains the other, e.g. "studentname" and "name". Edit distance alone
// under-scores these.
const containmentScore = 0.8

const maxSampleValues = 5

type headerHint struct {
	pattern     *regexp.Regexp
	description string
}

var headerHints = []headerHint{
	{regexp.MustCompile(`(?i)phone|mobile|contact`), "Contact information field"},
	{regexp.MustCompile(`(?i)e-?mail`), "Email address field"},
	{regexp.MustCompile(`(?i)roll|reg(istration)?|prn|\bid\b`), "Identifier field"},
	{regexp.MustCompile(`(?i)name`), "Name field"},
	{regexp.MustCompile(`(?i)cgpa|gpa|marks?|grade|score|percent`), "Academic score field"},
	{regexp.MustCompile(`(?i)date|dob|birth|year`), "Date field"},
	{regexp.MustCompile(`(?i)dept|branch|course|stream`), "Department field"},
	{regexp.MustCompile(`(?i)skill|lang|tech|cert`), "Skill list field"},
	{regexp.MustCompile(`(?i)addr|city|state|pin|zip`), "Address field"},
}

// Matcher proposes column mappings against a fixed set of canonical fields.
// The known-field order is significant: ties resolve to the first field that
// reaches the maximum score.
type Matcher struct {
	known     []string
	overrides map[string]string
	threshold float64
}

// NewMatcher builds a matcher. Overrides map normalized raw headers straight
// to canonical fields and win over fuzzy scoring. A non-positive threshold
// falls back to DefaultThreshold.
func NewMatcher(known []string, overrides map[string]string, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	normalized := make(map[string]string, len(overrides))
	for header, field := range overrides {
		normalized[similarity.Normalize(header)] = field
	}
	return &Matcher{
		known:     append([]string(nil), known...),
		overrides: normalized,
		threshold: threshold,
	}
}

// Propose maps one raw header to a canonical field, or returns a pending
// mapping when no known field is a confident match.
func (m *Matcher) Propose(rawHeader string, samples []string) domain.ColumnMapping {
	mapping := domain.ColumnMapping{
		RawHeader:    rawHeader,
		Action:       domain.MappingActionPending,
		DataType:     inferDataType(samples),
		SampleValues: samples,
	}

	normalized := similarity.Normalize(rawHeader)

	if field, ok := m.overrides[normalized]; ok {
		mapping.Accept(field)
		return mapping
	}
	for _, field := range m.known {
		if similarity.Normalize(field) == normalized {
			mapping.Accept(field)
			return mapping
		}
	}

	bestField := ""
	bestScore := 0.0
	for _, field := range m.known {
		score := confidence(normalized, similarity.Normalize(field))
		if score > bestScore {
			bestScore = score
			bestField = field
		}
	}

	if bestField != "" && bestScore > m.threshold {
		mapping.Accept(bestField)
		return mapping
	}

	mapping.Description = describeHeader(rawHeader)
	return mapping
}

// MatchHeaders proposes one mapping per unique header, in header order,
// collecting up to maxSampleValues non-empty cell values per column.
func (m *Matcher) MatchHeaders(headers []string, rows []map[string]string) []domain.ColumnMapping {
	seen := make(map[string]struct{}, len(headers))
	mappings := make([]domain.ColumnMapping, 0, len(headers))

	for _, header := range headers {
		if _, dup := seen[header]; dup {
			continue
		}
		seen[header] = struct{}{}
		mappings = append(mappings, m.Propose(header, sampleValues(header, rows)))
	}

	return mappings
}

// confidence combines the normalized edit-distance score with a containment
// check over already-normalized inputs.
func confidence(a, b string) float64 {
	score := similarity.Score(a, b)
	if a != "" && b != "" && (strings.Contains(a, b) || strings.Contains(b, a)) && score < containmentScore {
		score = containmentScore
	}
	return score
}

func describeHeader(header string) string {
	for _, hint := range headerHints {
		if hint.pattern.MatchString(header) {
			return hint.description
		}
	}
	return "Unrecognized column"
}

func sampleValues(header string, rows []map[string]string) []string {
	var samples []string
	for _, row := range rows {
		if row == nil {
			continue
		}
		value := strings.TrimSpace(row[header])
		if value == "" {
			continue
		}
		samples = append(samples, value)
		if len(samples) == maxSampleValues {
			break
		}
	}
	return samples
}

// inferDataType profiles sample cell values the same way the validator will
// coerce them, preferring the narrowest type every sample satisfies.
func inferDataType(samples []string) domain.DataType {
	if len(samples) == 0 {
		return domain.DataTypeString
	}

	isBool := true
	isNumber := true
	isDate := true
	isArray := true

	for _, sample := range samples {
		if _, ok := validate.ParseBool(sample); !ok {
			isBool = false
		}
		if _, err := strconv.ParseFloat(sample, 64); err != nil {
			isNumber = false
		}
		if _, err := validate.ParseDate(sample); err != nil {
			isDate = false
		}
		if !strings.Contains(sample, ",") && !strings.Contains(sample, ";") {
			isArray = false
		}
	}

	switch {
	case isBool:
		return domain.DataTypeBoolean
	case isNumber:
		return domain.DataTypeNumber
	case isDate:
		return domain.DataTypeDate
	case isArray:
		return domain.DataTypeArray
	default:
		return domain.DataTypeString
	}
}
