// Package mapper turns raw spreadsheet rows into ProcessedRecords by
// applying accepted column mappings and the field rule engine.
package mapper

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/validate"
)

// MapRows processes every row in input order, one ProcessedRecord per row.
// Field-level failures are captured on the record, never returned; the only
// hard failure is a structurally invalid row (nil map), which violates the
// upstream decoder contract. All structural violations are aggregated so the
// caller sees every bad row at once.
func MapRows(rows []map[string]string, mappings []domain.ColumnMapping, v *validate.Validator) ([]domain.ProcessedRecord, error) {
	accepted := make([]domain.ColumnMapping, 0, len(mappings))
	for _, mapping := range mappings {
		if mapping.Action == domain.MappingActionMap && mapping.CanonicalField != "" {
			accepted = append(accepted, mapping)
		}
	}

	var structural *multierror.Error
	records := make([]domain.ProcessedRecord, 0, len(rows))

	for idx, row := range rows {
		if row == nil {
			structural = multierror.Append(structural, fmt.Errorf("row %d is not a well-formed key/value mapping", idx))
			continue
		}
		records = append(records, mapRow(idx, row, accepted, v))
	}

	if err := structural.ErrorOrNil(); err != nil {
		return nil, err
	}
	return records, nil
}

func mapRow(idx int, row map[string]string, accepted []domain.ColumnMapping, v *validate.Validator) domain.ProcessedRecord {
	mapped := domain.Record{}
	var errs []domain.ValidationError
	var warns []domain.ValidationWarning
	covered := make(map[string]bool, len(accepted))

	for _, mapping := range accepted {
		covered[mapping.CanonicalField] = true

		raw := row[mapping.RawHeader]
		result := v.ValidateField(idx, mapping.CanonicalField, raw)
		errs = append(errs, result.Errors...)
		warns = append(warns, result.Warnings...)

		if result.Value != nil {
			mapped[mapping.CanonicalField] = result.Value
		}
	}

	// Required canonical fields with no mapped column at all are missing
	// after mapping, not merely empty.
	for _, field := range v.Rules().Fields {
		rule := v.Rules().Rules[field]
		if rule.Required && !covered[field] {
			errs = append(errs, domain.ValidationError{
				Row:      idx,
				Field:    field,
				Message:  fmt.Sprintf("required field %s has no mapped column", field),
				Severity: domain.SeverityCritical,
			})
		}
	}

	v.ApplyDefaults(mapped)

	return domain.NewProcessedRecord(row, mapped, errs, warns)
}
