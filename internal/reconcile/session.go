// Package reconcile wires the pipeline together: header matching, row
// mapping and validation, keyed merging, and the audit trail, all scoped to
// one session so concurrent uploads cannot corrupt each other's state.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/sheetsync/reconcile/internal/domain"
	"github.com/sheetsync/reconcile/internal/mapper"
	"github.com/sheetsync/reconcile/internal/merge"
	"github.com/sheetsync/reconcile/internal/schema"
	"github.com/sheetsync/reconcile/internal/transfer"
	"github.com/sheetsync/reconcile/internal/validate"
)

// Options configures a session.
type Options struct {
	Rules     domain.RuleSet
	Strategy  merge.Strategy
	Threshold float64
	Overrides map[string]string
	ActorID   string
}

// Session owns one reconciliation run's state: the proposed column mappings
// awaiting caller decisions and the audit trail. Lifecycle: Open →
// MatchHeaders → (caller confirms pending mappings) → Run → read results →
// Clear.
type Session struct {
	rules    domain.RuleSet
	strategy merge.Strategy
	matcher  *schema.Matcher
	engine   *transfer.Engine
	mappings []domain.ColumnMapping
}

// Open starts a session. The zero strategy defaults to smart, the zero
// threshold to the package default.
func Open(opts Options) (*Session, error) {
	if opts.Rules.Identifier == "" {
		return nil, errors.New("rule set must name an identifier field")
	}
	strategy := opts.Strategy
	if strategy == "" {
		strategy = merge.StrategySmart
	}

	return &Session{
		rules:    opts.Rules,
		strategy: strategy,
		matcher:  schema.NewMatcher(opts.Rules.Known(), opts.Overrides, opts.Threshold),
		engine:   transfer.NewEngine(opts.Rules.Identifier, strategy, opts.ActorID),
	}, nil
}

// MatchHeaders proposes column mappings for the given headers, sampling the
// rows for the mapping UI collaborator. Pending entries stay pending until
// the caller calls ConfirmMapping or SkipColumn.
func (s *Session) MatchHeaders(headers []string, rows []map[string]string) []domain.ColumnMapping {
	s.mappings = s.matcher.MatchHeaders(headers, rows)
	return s.Mappings()
}

// Mappings returns a copy of the current mapping proposals.
func (s *Session) Mappings() []domain.ColumnMapping {
	out := make([]domain.ColumnMapping, len(s.mappings))
	copy(out, s.mappings)
	return out
}

// ConfirmMapping resolves a pending (or re-points an existing) mapping to
// the given canonical field.
func (s *Session) ConfirmMapping(rawHeader, field string) error {
	if _, ok := s.rules.Rule(field); !ok {
		return fmt.Errorf("unknown canonical field %q", field)
	}
	mapping := s.findMapping(rawHeader)
	if mapping == nil {
		return fmt.Errorf("no mapping proposed for header %q", rawHeader)
	}
	mapping.Accept(field)
	return nil
}

// SkipColumn marks a column as deliberately unmapped.
func (s *Session) SkipColumn(rawHeader string) error {
	mapping := s.findMapping(rawHeader)
	if mapping == nil {
		return fmt.Errorf("no mapping proposed for header %q", rawHeader)
	}
	mapping.Skip()
	return nil
}

// Pending returns the mappings still awaiting a caller decision.
func (s *Session) Pending() []domain.ColumnMapping {
	var pending []domain.ColumnMapping
	for _, mapping := range s.mappings {
		if mapping.Action == domain.MappingActionPending {
			pending = append(pending, mapping)
		}
	}
	return pending
}

// Resolve registers a per-field conflict decision for the record with the
// given identifier value, applied on the next Run.
func (s *Session) Resolve(key, field string, resolution domain.Resolution) {
	s.engine.Resolve(key, field, resolution)
}

// Run validates and merges the rows against the existing collection. Rows
// are processed strictly in input order. Columns whose mapping is pending or
// skipped are retained in each record's original row only. The existing
// collection is never mutated; the result carries its replacement.
func (s *Session) Run(rows []map[string]string, existing []domain.Record) (transfer.Result, error) {
	validator := validate.NewValidator(s.rules, existing)

	processed, err := mapper.MapRows(rows, s.mappings, validator)
	if err != nil {
		return transfer.Result{}, err
	}

	return s.engine.Transfer(processed, existing), nil
}

// AuditTrail returns a read-only copy of the session's trail.
func (s *Session) AuditTrail() []domain.AuditEntry {
	return s.engine.AuditTrail()
}

// Clear discards the audit trail, ending the session's bookkeeping.
func (s *Session) Clear() {
	s.engine.ClearAuditTrail()
}

func (s *Session) findMapping(rawHeader string) *domain.ColumnMapping {
	for i := range s.mappings {
		if s.mappings[i].RawHeader == rawHeader {
			return &s.mappings[i]
		}
	}
	return nil
}
