// Package validate coerces raw cell values into typed canonical values and
// checks them against field rules, collecting errors and warnings per field
// without aborting the batch.
package validate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/sheetsync/reconcile/internal/domain"
)

// FieldResult carries the typed value plus everything validation had to say
// about it. Errors and warnings accumulate independently; checks never
// short-circuit each other.
type FieldResult struct {
	Value    any
	Errors   []domain.ValidationError
	Warnings []domain.ValidationWarning
}

// Validator runs the rule engine for one batch. The seen-value trackers for
// unique fields are per-batch state, so a fresh Validator is required per run.
type Validator struct {
	rules    domain.RuleSet
	existing map[string]map[string]struct{} // field -> values already in the store
	seen     map[string]map[string]struct{} // field -> values seen in this batch
	patterns map[string]*regexp.Regexp
}

// NewValidator builds a batch validator. The existing records feed the
// uniqueness-against-store check, which warns rather than errors since a
// match signals an update, not a defect.
func NewValidator(rules domain.RuleSet, existing []domain.Record) *Validator {
	v := &Validator{
		rules:    rules,
		existing: map[string]map[string]struct{}{},
		seen:     map[string]map[string]struct{}{},
		patterns: map[string]*regexp.Regexp{},
	}

	for _, field := range rules.Fields {
		rule := rules.Rules[field]
		if !rule.Unique {
			continue
		}
		values := map[string]struct{}{}
		for _, record := range existing {
			if value, ok := record[field]; ok && !domain.IsEmpty(value) {
				values[fmt.Sprint(value)] = struct{}{}
			}
		}
		v.existing[field] = values
		v.seen[field] = map[string]struct{}{}
	}

	return v
}

// Rules exposes the rule set this validator enforces.
func (v *Validator) Rules() domain.RuleSet {
	return v.rules
}

// ValidateField coerces and validates one raw cell for the given canonical
// field. A coercion failure halts further checks for this field only.
func (v *Validator) ValidateField(row int, field, raw string) FieldResult {
	result := FieldResult{}

	rule, ok := v.rules.Rule(field)
	if !ok {
		// Unknown canonical field: pass through as trimmed string.
		value, _ := Coerce(raw, domain.DataTypeString)
		result.Value = value
		return result
	}

	value, err := Coerce(raw, rule.DataType)
	if err != nil {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    raw,
			Message:  err.Error(),
			Severity: domain.SeverityError,
		})
		return result
	}
	result.Value = value

	if value == nil {
		if rule.Required {
			result.Errors = append(result.Errors, domain.ValidationError{
				Row:      row,
				Field:    field,
				Message:  fmt.Sprintf("required field %s is missing", field),
				Severity: domain.SeverityCritical,
			})
		} else {
			result.Warnings = append(result.Warnings, domain.ValidationWarning{
				Row:     row,
				Field:   field,
				Message: fmt.Sprintf("optional field %s has no value", field),
			})
		}
		return result
	}

	v.checkPattern(row, field, rule, value, &result)
	v.checkEnum(row, field, rule, value, &result)
	v.checkRange(row, field, rule, value, &result)
	v.checkLength(row, field, rule, value, &result)
	v.checkUnique(row, field, rule, value, &result)

	return result
}

func (v *Validator) checkPattern(row int, field string, rule domain.FieldRule, value any, result *FieldResult) {
	if rule.Pattern == "" {
		return
	}
	str, ok := value.(string)
	if !ok {
		return
	}

	pattern, ok := v.patterns[field]
	if !ok {
		compiled, err := regexp.Compile(rule.Pattern)
		if err != nil {
			result.Errors = append(result.Errors, domain.ValidationError{
				Row:      row,
				Field:    field,
				Value:    value,
				Message:  fmt.Sprintf("invalid pattern for field %s: %v", field, err),
				Severity: domain.SeverityError,
			})
			return
		}
		pattern = compiled
		v.patterns[field] = pattern
	}

	if !pattern.MatchString(str) {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    value,
			Message:  fmt.Sprintf("value %q does not match pattern %s", str, rule.Pattern),
			Severity: domain.SeverityError,
		})
	}
}

func (v *Validator) checkEnum(row int, field string, rule domain.FieldRule, value any, result *FieldResult) {
	if len(rule.Enum) == 0 {
		return
	}
	str, ok := value.(string)
	if !ok {
		return
	}
	for _, allowed := range rule.Enum {
		if str == allowed {
			return
		}
	}
	result.Errors = append(result.Errors, domain.ValidationError{
		Row:      row,
		Field:    field,
		Value:    value,
		Message:  fmt.Sprintf("value %q is not one of the allowed values for %s", str, field),
		Severity: domain.SeverityError,
	})
}

func (v *Validator) checkRange(row int, field string, rule domain.FieldRule, value any, result *FieldResult) {
	if rule.Min == nil && rule.Max == nil {
		return
	}
	num, ok := value.(float64)
	if !ok {
		return
	}
	if rule.Min != nil && num < *rule.Min {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    formatNumber(num),
			Message:  fmt.Sprintf("value %s for %s is below the minimum %s", formatNumber(num), field, formatNumber(*rule.Min)),
			Severity: domain.SeverityError,
		})
	}
	if rule.Max != nil && num > *rule.Max {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    formatNumber(num),
			Message:  fmt.Sprintf("value %s for %s exceeds the maximum %s", formatNumber(num), field, formatNumber(*rule.Max)),
			Severity: domain.SeverityError,
		})
	}
}

func (v *Validator) checkLength(row int, field string, rule domain.FieldRule, value any, result *FieldResult) {
	if rule.MinLength == nil && rule.MaxLength == nil {
		return
	}
	str, ok := value.(string)
	if !ok {
		return
	}
	if rule.MinLength != nil && len(str) < *rule.MinLength {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    str,
			Message:  fmt.Sprintf("value for %s is shorter than %d characters", field, *rule.MinLength),
			Severity: domain.SeverityError,
		})
	}
	if rule.MaxLength != nil && len(str) > *rule.MaxLength {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    str,
			Message:  fmt.Sprintf("value for %s is longer than %d characters", field, *rule.MaxLength),
			Severity: domain.SeverityError,
		})
	}
}

func (v *Validator) checkUnique(row int, field string, rule domain.FieldRule, value any, result *FieldResult) {
	if !rule.Unique {
		return
	}
	key := fmt.Sprint(value)

	if _, dup := v.seen[field][key]; dup {
		result.Errors = append(result.Errors, domain.ValidationError{
			Row:      row,
			Field:    field,
			Value:    value,
			Message:  fmt.Sprintf("duplicate value %q for unique field %s within this batch", key, field),
			Severity: domain.SeverityError,
		})
	} else {
		v.seen[field][key] = struct{}{}
	}

	if _, exists := v.existing[field][key]; exists {
		result.Warnings = append(result.Warnings, domain.ValidationWarning{
			Row:     row,
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("value %q for %s matches an existing record and will update it", key, field),
		})
	}
}

// ApplyDefaults fills fields with natural zero identities after validation,
// so every mapped record is structurally complete even when optional columns
// were absent from the source.
func (v *Validator) ApplyDefaults(mapped domain.Record) {
	for _, field := range v.rules.Fields {
		if value, ok := mapped[field]; ok && value != nil {
			continue
		}
		rule := v.rules.Rules[field]
		if rule.Default != nil {
			mapped[field] = rule.Default
			continue
		}
		switch rule.DataType {
		case domain.DataTypeArray:
			mapped[field] = []string{}
		case domain.DataTypeBoolean:
			mapped[field] = false
		default:
			delete(mapped, field)
		}
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
