package domain

// MappingAction is the caller-visible state of a column mapping proposal.
type MappingAction string

const (
	MappingActionMap     MappingAction = "map"
	MappingActionSkip    MappingAction = "skip"
	MappingActionPending MappingAction = "pending"
)

// ColumnMapping links one raw spreadsheet header to a canonical field.
// Pending mappings require an explicit caller decision; they are never
// auto-promoted.
type ColumnMapping struct {
	RawHeader      string        `json:"raw_header"`
	CanonicalField string        `json:"canonical_field,omitempty"`
	Action         MappingAction `json:"action"`
	Description    string        `json:"description,omitempty"`
	DataType       DataType      `json:"data_type,omitempty"`
	SampleValues   []string      `json:"sample_values,omitempty"`
}

// Accept resolves a mapping to the given canonical field.
func (m *ColumnMapping) Accept(field string) {
	m.CanonicalField = field
	m.Action = MappingActionMap
}

// Skip marks the column as deliberately unmapped. Its values stay in the
// original row only.
func (m *ColumnMapping) Skip() {
	m.CanonicalField = ""
	m.Action = MappingActionSkip
}
