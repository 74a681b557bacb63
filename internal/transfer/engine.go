// Package transfer commits processed records against an existing record
// collection and keeps the append-only audit trail for the run.
package transfer

import (
	"time"

	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/merge"
)

// Result summarizes one transfer: the resulting collection, counters, and
// every error, warning, and conflict accumulated across the batch. A failed
// batch is still a full result; valid rows within it are merged.
type Result struct {
	Records          []domain.Record            `json:"records"`
	TransferredCount int                        `json:"transferred_count"`
	DuplicateCount   int                        `json:"duplicate_count"`
	SkippedCount     int                        `json:"skipped_count"`
	Conflicts        []domain.ConflictRecord    `json:"conflicts,omitempty"`
	Errors           []domain.ValidationError   `json:"errors,omitempty"`
	Warnings         []domain.ValidationWarning `json:"warnings,omitempty"`
	Success          bool                       `json:"success"`
	Elapsed          time.Duration              `json:"elapsed"`
}

// Engine applies merge decisions and owns the audit trail. The trail
// accumulates across Transfer calls until the caller explicitly clears it;
// one engine instance belongs to one reconciliation session.
type Engine struct {
	identifier  string
	strategy    merge.Strategy
	actorID     string
	trail       []domain.AuditEntry
	resolutions map[string]map[string]domain.Resolution
}

// NewEngine builds a transfer engine keyed on the given identifier field.
func NewEngine(identifier string, strategy merge.Strategy, actorID string) *Engine {
	if actorID == "" {
		actorID = "system"
	}
	return &Engine{
		identifier:  identifier,
		strategy:    strategy,
		actorID:     actorID,
		resolutions: map[string]map[string]domain.Resolution{},
	}
}

// Resolve registers a caller decision for one conflicting field of the
// record with the given identifier value. It overrides the merge strategy
// for exactly that field.
func (e *Engine) Resolve(key, field string, resolution domain.Resolution) {
	if e.resolutions[key] == nil {
		e.resolutions[key] = map[string]domain.Resolution{}
	}
	e.resolutions[key][field] = resolution
}

// Transfer commits the batch in input order. Error rows are skipped and
// audited, unknown identifiers insert, known identifiers merge and audit the
// field diff. The caller's collection is never mutated; the resulting
// collection is returned on the Result.
func (e *Engine) Transfer(processed []domain.ProcessedRecord, existing []domain.Record) Result {
	started := time.Now()
	result := Result{}

	records := make([]domain.Record, len(existing))
	index := make(map[string]int, len(existing))
	for i, record := range existing {
		records[i] = record.Clone()
		if key := record.Identifier(e.identifier); key != "" {
			index[key] = i
		}
	}

	for _, record := range processed {
		result.Errors = append(result.Errors, record.Errors...)
		result.Warnings = append(result.Warnings, record.Warnings...)

		if record.Status == domain.StatusError {
			result.SkippedCount++
			e.append(domain.AuditActionSkip, e.recordID(record), nil)
			continue
		}

		key := record.MappedData.Identifier(e.identifier)
		if key == "" {
			// Identifier missing on an otherwise valid row: nothing to key
			// the merge on, so the row cannot be committed.
			result.SkippedCount++
			e.append(domain.AuditActionError, record.ID, nil)
			continue
		}

		pos, exists := index[key]
		if !exists {
			records = append(records, record.MappedData.Clone())
			index[key] = len(records) - 1
			result.TransferredCount++
			e.append(domain.AuditActionInsert, key, map[string]domain.FieldChange{})
			continue
		}

		before := records[pos]
		incoming := record.MappedData

		if conflicts := merge.DetectConflicts(before, incoming); len(conflicts) > 0 {
			result.Conflicts = append(result.Conflicts, domain.ConflictRecord{
				Key:       key,
				Conflicts: conflicts,
				Existing:  before.Clone(),
				Incoming:  incoming.Clone(),
			})
		}

		merged := merge.Merge(before, incoming, e.strategy, e.resolutions[key])
		records[pos] = merged
		result.DuplicateCount++
		e.append(domain.AuditActionUpdate, key, merge.Diff(before, merged))
	}

	result.Records = records
	result.Success = len(result.Errors) == 0
	result.Elapsed = time.Since(started)
	return result
}

// AuditTrail returns a read-only copy of the accumulated trail.
func (e *Engine) AuditTrail() []domain.AuditEntry {
	out := make([]domain.AuditEntry, len(e.trail))
	copy(out, e.trail)
	return out
}

// ClearAuditTrail discards the accumulated trail. Nothing expires it
// automatically.
func (e *Engine) ClearAuditTrail() {
	e.trail = nil
}

func (e *Engine) append(action domain.AuditAction, recordID string, changes map[string]domain.FieldChange) {
	e.trail = append(e.trail, domain.NewAuditEntry(action, recordID, changes, e.actorID))
}

// recordID prefers the identifier value so skip entries stay meaningful to
// the audit consumer, falling back to the generated record id.
func (e *Engine) recordID(record domain.ProcessedRecord) string {
	if key := record.MappedData.Identifier(e.identifier); key != "" {
		return key
	}
	return record.ID
}
