package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction names the decision taken for one processed record.
type AuditAction string

const (
	AuditActionInsert AuditAction = "insert"
	AuditActionUpdate AuditAction = "update"
	AuditActionSkip   AuditAction = "skip"
	AuditActionError  AuditAction = "error"
)

// FieldChange captures a before/after pair for one field of an updated
// record.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// AuditEntry is one append-only line of the reconciliation trail. Entries
// are never mutated or removed for the lifetime of a session.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Action    AuditAction            `json:"action"`
	RecordID  string                 `json:"record_id"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	ActorID   string                 `json:"actor_id"`
}

// NewAuditEntry stamps a trail entry with a fresh id and the current time.
func NewAuditEntry(action AuditAction, recordID string, changes map[string]FieldChange, actorID string) AuditEntry {
	return AuditEntry{
		ID:        uuid.New().String(),
		Action:    action,
		RecordID:  recordID,
		Changes:   changes,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
	}
}
