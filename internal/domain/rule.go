package domain

import "fmt"

// DataType tags the coercion target for a canonical field.
type DataType string

const (
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeDate    DataType = "date"
	DataTypeBoolean DataType = "boolean"
	DataTypeArray   DataType = "array"
)

// ParseDataType validates a data type tag from configuration.
func ParseDataType(value string) (DataType, error) {
	switch DataType(value) {
	case DataTypeString, DataTypeNumber, DataTypeDate, DataTypeBoolean, DataTypeArray:
		return DataType(value), nil
	case "":
		return DataTypeString, nil
	}
	return "", fmt.Errorf("unknown data type %q", value)
}

// FieldRule is the static validation contract for one canonical field.
// Optional constraints are pointers so "unset" and "zero" stay distinct.
type FieldRule struct {
	Required  bool     `json:"required"`
	DataType  DataType `json:"data_type"`
	Pattern   string   `json:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Unique    bool     `json:"unique"`
	Default   any      `json:"default,omitempty"`
}

// RuleSet is the process-wide schema: the identifier field plus an ordered
// list of canonical fields with their rules. Field order is significant, it
// drives the matcher's stable tie-break.
type RuleSet struct {
	Identifier string
	Fields     []string
	Rules      map[string]FieldRule
}

// NewRuleSet builds a rule set preserving field declaration order.
func NewRuleSet(identifier string) RuleSet {
	return RuleSet{
		Identifier: identifier,
		Rules:      map[string]FieldRule{},
	}
}

// WithField appends a field rule, replacing any previous rule for the same
// name without disturbing the original position.
func (rs RuleSet) WithField(name string, rule FieldRule) RuleSet {
	if _, exists := rs.Rules[name]; !exists {
		rs.Fields = append(rs.Fields, name)
	}
	rs.Rules[name] = rule
	return rs
}

// Rule returns the rule for a canonical field.
func (rs RuleSet) Rule(name string) (FieldRule, bool) {
	rule, ok := rs.Rules[name]
	return rule, ok
}

// Known returns the canonical field names in declaration order.
func (rs RuleSet) Known() []string {
	out := make([]string, len(rs.Fields))
	copy(out, rs.Fields)
	return out
}
