package domain

import "github.com/google/uuid"

// ValidationStatus is the aggregate outcome of validating one row.
type ValidationStatus string

const (
	StatusValid   ValidationStatus = "valid"
	StatusWarning ValidationStatus = "warning"
	StatusError   ValidationStatus = "error"
)

// Severity distinguishes missing required data from constraint violations.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
)

// ValidationError is a field-scoped failure captured during mapping. Rows
// carrying at least one are excluded from merge.
type ValidationError struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Value    any      `json:"value,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationWarning is a non-blocking observation about a field value.
type ValidationWarning struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

// ProcessedRecord is the immutable result of mapping and validating one raw
// row. OriginalRow keeps every source column, including skipped and pending
// ones; MappedData holds only accepted, coerced canonical fields.
type ProcessedRecord struct {
	ID          string              `json:"id"`
	OriginalRow map[string]string   `json:"original_row"`
	MappedData  Record              `json:"mapped_data"`
	Status      ValidationStatus    `json:"validation_status"`
	Errors      []ValidationError   `json:"errors,omitempty"`
	Warnings    []ValidationWarning `json:"warnings,omitempty"`
}

// NewProcessedRecord seals a mapped row, deriving the aggregate status from
// the collected issues.
func NewProcessedRecord(original map[string]string, mapped Record, errs []ValidationError, warns []ValidationWarning) ProcessedRecord {
	originalCopy := make(map[string]string, len(original))
	for key, value := range original {
		originalCopy[key] = value
	}

	status := StatusValid
	if len(warns) > 0 {
		status = StatusWarning
	}
	if len(errs) > 0 {
		status = StatusError
	}

	return ProcessedRecord{
		ID:          uuid.New().String(),
		OriginalRow: originalCopy,
		MappedData:  mapped.Clone(),
		Status:      status,
		Errors:      errs,
		Warnings:    warns,
	}
}
