// Package merge reconciles two records sharing the same identifier: it
// detects field-level conflicts and applies a named merge strategy, with
// optional per-field resolutions overriding the strategy.
package merge

import (
	"fmt"
	"sort"

	"github.com/sheetsync/reconcile/internal/domain"
)

// Strategy names the policy governing which side wins for each field.
type Strategy string

const (
	// StrategyOverwrite lets incoming values win unconditionally for every
	// field they define.
	StrategyOverwrite Strategy = "overwrite"
	// StrategyPreserve keeps existing values; incoming only fills fields the
	// existing record left empty.
	StrategyPreserve Strategy = "preserve"
	// StrategySmart is the default: incoming wins where existing is empty or
	// incoming is non-empty, and list fields present on both sides become a
	// deduplicated union (existing elements first).
	StrategySmart Strategy = "smart"
)

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(value string) (Strategy, error) {
	switch Strategy(value) {
	case StrategyOverwrite, StrategyPreserve, StrategySmart:
		return Strategy(value), nil
	case "":
		return StrategySmart, nil
	}
	return "", fmt.Errorf("unknown merge strategy %q", value)
}

// DetectConflicts reports every field where both records hold non-empty,
// differing values. Fields are visited in sorted order so reports are
// deterministic and symmetric.
func DetectConflicts(existing, incoming domain.Record) []domain.FieldConflict {
	fields := make([]string, 0, len(existing))
	seen := make(map[string]struct{}, len(existing))
	for field := range existing {
		fields = append(fields, field)
		seen[field] = struct{}{}
	}
	for field := range incoming {
		if _, ok := seen[field]; !ok {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)

	var conflicts []domain.FieldConflict
	for _, field := range fields {
		existingValue, existingOK := existing[field]
		incomingValue, incomingOK := incoming[field]
		if !existingOK || !incomingOK {
			continue
		}
		if domain.IsEmpty(existingValue) || domain.IsEmpty(incomingValue) {
			continue
		}
		if !domain.Equal(existingValue, incomingValue) {
			conflicts = append(conflicts, domain.FieldConflict{
				Field:    field,
				Existing: existingValue,
				Incoming: incomingValue,
			})
		}
	}
	return conflicts
}

// Merge combines two records under the given strategy and returns a new
// record; neither input is mutated. Resolutions, keyed by field, override
// the strategy for exactly those fields. Conflicts never halt a merge.
func Merge(existing, incoming domain.Record, strategy Strategy, resolutions map[string]domain.Resolution) domain.Record {
	merged := existing.Clone()

	for field, incomingValue := range incoming {
		switch strategy {
		case StrategyOverwrite:
			merged[field] = incomingValue
		case StrategyPreserve:
			if domain.IsEmpty(merged[field]) {
				merged[field] = incomingValue
			}
		default: // smart
			existingValue := merged[field]
			if existingList, ok := domain.ToStringSlice(existingValue); ok {
				if incomingList, ok := domain.ToStringSlice(incomingValue); ok {
					merged[field] = unionLists(existingList, incomingList)
					continue
				}
			}
			if domain.IsEmpty(existingValue) || !domain.IsEmpty(incomingValue) {
				merged[field] = incomingValue
			}
		}
	}

	for field, resolution := range resolutions {
		switch resolution {
		case domain.ResolutionKeepExisting:
			if value, ok := existing[field]; ok {
				merged[field] = value
			} else {
				delete(merged, field)
			}
		case domain.ResolutionUseIncoming:
			if value, ok := incoming[field]; ok {
				merged[field] = value
			}
		}
	}

	return merged
}

// Diff returns the fields whose value actually changed between two records,
// using the same deep-equality rule as conflict detection.
func Diff(before, after domain.Record) map[string]domain.FieldChange {
	changes := map[string]domain.FieldChange{}

	for field, afterValue := range after {
		beforeValue, ok := before[field]
		if !ok {
			changes[field] = domain.FieldChange{New: afterValue}
			continue
		}
		if !domain.Equal(beforeValue, afterValue) {
			changes[field] = domain.FieldChange{Old: beforeValue, New: afterValue}
		}
	}
	for field, beforeValue := range before {
		if _, ok := after[field]; !ok {
			changes[field] = domain.FieldChange{Old: beforeValue}
		}
	}

	return changes
}

// unionLists keeps existing elements first, then appends incoming elements
// not already present.
func unionLists(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, item := range existing {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	for _, item := range incoming {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
