package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sheetsync/reconcile/internal/domain"
)

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ConversionError reports a raw value that cannot be coerced to its field's
// declared type. It is localized to one field and never aborts the row.
type ConversionError struct {
	Value    string
	DataType domain.DataType
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("unable to coerce %q to %s", e.Value, e.DataType)
}

// Coerce converts a raw cell value to the field's declared type. Empty input
// short-circuits to nil with no error; absence is never a conversion failure.
func Coerce(raw string, dataType domain.DataType) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch dataType {
	case domain.DataTypeNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, &ConversionError{Value: raw, DataType: dataType}
		}
		return f, nil
	case domain.DataTypeDate:
		ts, err := ParseDate(raw)
		if err != nil {
			return nil, &ConversionError{Value: raw, DataType: dataType}
		}
		return ts.UTC().Format(time.RFC3339), nil
	case domain.DataTypeBoolean:
		b, ok := ParseBool(raw)
		if !ok {
			return nil, &ConversionError{Value: raw, DataType: dataType}
		}
		return b, nil
	case domain.DataTypeArray:
		return splitList(raw), nil
	default:
		return raw, nil
	}
}

// ParseDate tries the supported spreadsheet date layouts in order.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}

// ParseBool normalizes common spreadsheet boolean spellings.
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y":
		return true, true
	case "false", "0", "no", "n":
		return false, true
	}
	return false, false
}

func splitList(raw string) []string {
	sep := ","
	if !strings.Contains(raw, ",") && strings.Contains(raw, ";") {
		sep = ";"
	}
	parts := strings.Split(raw, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
