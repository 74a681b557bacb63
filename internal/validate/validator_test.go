package validate

import (
	"strconv"
	"testing"

	"github.com/sheetsync/reconcile/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func testRules() domain.RuleSet {
	rules := domain.NewRuleSet("roll_no")
	rules = rules.WithField("roll_no", domain.FieldRule{Required: true, DataType: domain.DataTypeString, Unique: true})
	rules = rules.WithField("name", domain.FieldRule{Required: true, DataType: domain.DataTypeString, MinLength: intPtr(2)})
	rules = rules.WithField("cgpa", domain.FieldRule{DataType: domain.DataTypeNumber, Min: floatPtr(0), Max: floatPtr(10)})
	rules = rules.WithField("skills", domain.FieldRule{DataType: domain.DataTypeArray})
	rules = rules.WithField("placed", domain.FieldRule{DataType: domain.DataTypeBoolean})
	rules = rules.WithField("status", domain.FieldRule{DataType: domain.DataTypeString, Enum: []string{"active", "alumni"}, Default: "active"})
	return rules
}

func TestCoerceNumber(t *testing.T) {
	value, err := Coerce("8.5", domain.DataTypeNumber)
	if err != nil {
		t.Fatalf("unexpected coercion error: %v", err)
	}
	if value.(float64) != 8.5 {
		t.Fatalf("expected 8.5, got %v", value)
	}

	// Round-trip: formatting the coerced value reproduces the numeric input.
	if got := strconv.FormatFloat(value.(float64), 'f', -1, 64); got != "8.5" {
		t.Fatalf("expected round-trip to reproduce 8.5, got %s", got)
	}
}

func TestCoerceEmptyShortCircuits(t *testing.T) {
	for _, dt := range []domain.DataType{domain.DataTypeString, domain.DataTypeNumber, domain.DataTypeDate, domain.DataTypeBoolean, domain.DataTypeArray} {
		value, err := Coerce("   ", dt)
		if err != nil {
			t.Fatalf("empty input must never be a conversion error, got %v for %s", err, dt)
		}
		if value != nil {
			t.Fatalf("expected nil for empty input, got %v for %s", value, dt)
		}
	}
}

func TestCoerceBoolean(t *testing.T) {
	truthy := []string{"true", "1", "yes", "Y", "YES"}
	for _, raw := range truthy {
		value, err := Coerce(raw, domain.DataTypeBoolean)
		if err != nil || value != true {
			t.Fatalf("expected %q to coerce to true, got %v (%v)", raw, value, err)
		}
	}
	falsy := []string{"false", "0", "no", "N"}
	for _, raw := range falsy {
		value, err := Coerce(raw, domain.DataTypeBoolean)
		if err != nil || value != false {
			t.Fatalf("expected %q to coerce to false, got %v (%v)", raw, value, err)
		}
	}
	if _, err := Coerce("maybe", domain.DataTypeBoolean); err == nil {
		t.Fatal("expected a conversion error for non-boolean input")
	}
}

func TestCoerceArraySplitsAndTrims(t *testing.T) {
	value, err := Coerce("Java, Python ,, Go", domain.DataTypeArray)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := value.([]string)
	if len(items) != 3 || items[0] != "Java" || items[1] != "Python" || items[2] != "Go" {
		t.Fatalf("unexpected array coercion: %v", items)
	}
}

func TestCoerceDateProducesISO(t *testing.T) {
	value, err := Coerce("2024-03-15", domain.DataTypeDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.(string) != "2024-03-15T00:00:00Z" {
		t.Fatalf("expected RFC3339 output, got %v", value)
	}
}

func TestValidateFieldRangeViolation(t *testing.T) {
	v := NewValidator(testRules(), nil)

	result := v.ValidateField(0, "cgpa", "11.5")
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	err := result.Errors[0]
	if err.Field != "cgpa" || err.Severity != domain.SeverityError {
		t.Fatalf("unexpected error shape: %+v", err)
	}
	if err.Value != "11.5" {
		t.Fatalf("expected offending value 11.5, got %v", err.Value)
	}
}

func TestValidateFieldRequiredMissingIsCritical(t *testing.T) {
	v := NewValidator(testRules(), nil)

	result := v.ValidateField(3, "name", "")
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	if result.Errors[0].Severity != domain.SeverityCritical {
		t.Fatalf("expected critical severity, got %s", result.Errors[0].Severity)
	}
	if result.Errors[0].Row != 3 {
		t.Fatalf("expected row index 3, got %d", result.Errors[0].Row)
	}
}

func TestValidateFieldConversionFailureHaltsFieldOnly(t *testing.T) {
	v := NewValidator(testRules(), nil)

	bad := v.ValidateField(0, "cgpa", "high")
	if len(bad.Errors) != 1 || bad.Errors[0].Severity != domain.SeverityError {
		t.Fatalf("expected a single error-severity conversion failure, got %v", bad.Errors)
	}

	// Sibling field in the same row still validates independently.
	good := v.ValidateField(0, "name", "Alice")
	if len(good.Errors) != 0 {
		t.Fatalf("sibling field must validate cleanly, got %v", good.Errors)
	}
	if good.Value != "Alice" {
		t.Fatalf("expected trimmed string pass-through, got %v", good.Value)
	}
}

func TestValidateFieldUniqueWithinBatch(t *testing.T) {
	v := NewValidator(testRules(), nil)

	first := v.ValidateField(0, "roll_no", "CS001")
	if len(first.Errors) != 0 {
		t.Fatalf("first occurrence must pass, got %v", first.Errors)
	}
	second := v.ValidateField(1, "roll_no", "CS001")
	if len(second.Errors) != 1 {
		t.Fatalf("expected duplicate error, got %v", second.Errors)
	}
}

func TestValidateFieldUniqueAgainstStoreWarns(t *testing.T) {
	existing := []domain.Record{{"roll_no": "CS001", "name": "Alice"}}
	v := NewValidator(testRules(), existing)

	result := v.ValidateField(0, "roll_no", "CS001")
	if len(result.Errors) != 0 {
		t.Fatalf("store match must not error, got %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected an update warning, got %v", result.Warnings)
	}
}

func TestValidateFieldEnumMembership(t *testing.T) {
	v := NewValidator(testRules(), nil)

	if result := v.ValidateField(0, "status", "alumni"); len(result.Errors) != 0 {
		t.Fatalf("expected enum member to pass, got %v", result.Errors)
	}
	if result := v.ValidateField(0, "status", "expelled"); len(result.Errors) != 1 {
		t.Fatalf("expected enum violation, got %v", result.Errors)
	}
}

func TestApplyDefaults(t *testing.T) {
	v := NewValidator(testRules(), nil)

	mapped := domain.Record{"roll_no": "CS001", "name": "Alice"}
	v.ApplyDefaults(mapped)

	skills, ok := mapped["skills"].([]string)
	if !ok || len(skills) != 0 {
		t.Fatalf("expected empty skills slice, got %v", mapped["skills"])
	}
	if mapped["placed"] != false {
		t.Fatalf("expected boolean default false, got %v", mapped["placed"])
	}
	if mapped["status"] != "active" {
		t.Fatalf("expected enum default, got %v", mapped["status"])
	}
	if _, ok := mapped["cgpa"]; ok {
		t.Fatalf("number without declared default must stay absent, got %v", mapped["cgpa"])
	}
}
