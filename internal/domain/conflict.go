package domain

// FieldConflict reports one field where both records hold non-empty,
// differing values.
type FieldConflict struct {
	Field    string `json:"field"`
	Existing any    `json:"existing_value"`
	Incoming any    `json:"incoming_value"`
}

// ConflictRecord groups the conflicts detected for a single identifier.
// It is informational: conflicts never block a merge.
type ConflictRecord struct {
	Key       string          `json:"key"`
	Conflicts []FieldConflict `json:"conflicts"`
	Existing  Record          `json:"existing_record"`
	Incoming  Record          `json:"incoming_record"`
}

// Resolution is a caller-supplied decision for one conflicting field. It
// overrides the merge strategy for exactly that field.
type Resolution string

const (
	ResolutionKeepExisting Resolution = "keep-existing"
	ResolutionUseIncoming  Resolution = "use-incoming"
)
