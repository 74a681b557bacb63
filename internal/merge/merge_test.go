package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetsync/reconcile/internal/domain"
)

func existingRecord() domain.Record {
	return domain.Record{
		"roll_no": "CS001",
		"name":    "Alice",
		"cgpa":    8.0,
		"skills":  []string{"Java"},
		"email":   "",
	}
}

func incomingRecord() domain.Record {
	return domain.Record{
		"roll_no": "CS001",
		"name":    "Alice",
		"cgpa":    8.5,
		"skills":  []string{"Python"},
		"email":   "alice@example.com",
	}
}

func TestDetectConflicts(t *testing.T) {
	conflicts := DetectConflicts(existingRecord(), incomingRecord())

	require.Len(t, conflicts, 2)
	assert.Equal(t, "cgpa", conflicts[0].Field)
	assert.Equal(t, "skills", conflicts[1].Field)
	// Empty-on-one-side fields never conflict.
	for _, c := range conflicts {
		assert.NotEqual(t, "email", c.Field)
	}
}

func TestDetectConflictsSymmetry(t *testing.T) {
	a := existingRecord()
	b := incomingRecord()

	forward := DetectConflicts(a, b)
	backward := DetectConflicts(b, a)

	require.Len(t, backward, len(forward))
	for i := range forward {
		assert.Equal(t, forward[i].Field, backward[i].Field)
		assert.Equal(t, forward[i].Existing, backward[i].Incoming)
		assert.Equal(t, forward[i].Incoming, backward[i].Existing)
	}
}

func TestMergeSmart(t *testing.T) {
	merged := Merge(existingRecord(), incomingRecord(), StrategySmart, nil)

	assert.Equal(t, 8.5, merged["cgpa"])
	assert.Equal(t, []string{"Java", "Python"}, merged["skills"])
	assert.Equal(t, "alice@example.com", merged["email"])
}

func TestMergeSmartIdempotent(t *testing.T) {
	record := existingRecord()
	merged := Merge(record, record, StrategySmart, nil)

	require.Len(t, merged, len(record))
	for field, value := range record {
		assert.True(t, domain.Equal(value, merged[field]), "field %s changed under self-merge", field)
	}
}

func TestMergePreserve(t *testing.T) {
	merged := Merge(existingRecord(), incomingRecord(), StrategyPreserve, nil)

	assert.Equal(t, 8.0, merged["cgpa"])
	assert.Equal(t, []string{"Java"}, merged["skills"])
	// Preserve still fills fields the existing record left empty.
	assert.Equal(t, "alice@example.com", merged["email"])
}

func TestMergeOverwrite(t *testing.T) {
	merged := Merge(existingRecord(), incomingRecord(), StrategyOverwrite, nil)

	assert.Equal(t, 8.5, merged["cgpa"])
	assert.Equal(t, []string{"Python"}, merged["skills"])
}

func TestMergeResolutionsOverrideStrategy(t *testing.T) {
	resolutions := map[string]domain.Resolution{
		"cgpa":   domain.ResolutionKeepExisting,
		"skills": domain.ResolutionUseIncoming,
	}
	merged := Merge(existingRecord(), incomingRecord(), StrategySmart, resolutions)

	assert.Equal(t, 8.0, merged["cgpa"])
	assert.Equal(t, []string{"Python"}, merged["skills"])
	// Non-resolved fields still follow the strategy.
	assert.Equal(t, "alice@example.com", merged["email"])
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	existing := existingRecord()
	incoming := incomingRecord()

	_ = Merge(existing, incoming, StrategySmart, nil)

	assert.Equal(t, 8.0, existing["cgpa"])
	assert.Equal(t, []string{"Java"}, existing["skills"])
	assert.Equal(t, []string{"Python"}, incoming["skills"])
}

func TestDiffOnlyChangedFields(t *testing.T) {
	before := existingRecord()
	after := Merge(before, incomingRecord(), StrategySmart, nil)

	changes := Diff(before, after)

	require.Contains(t, changes, "cgpa")
	assert.Equal(t, 8.0, changes["cgpa"].Old)
	assert.Equal(t, 8.5, changes["cgpa"].New)
	require.Contains(t, changes, "skills")
	assert.NotContains(t, changes, "name")
	assert.NotContains(t, changes, "roll_no")
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategySmart, s)

	_, err = ParseStrategy("theirs")
	assert.Error(t, err)
}
