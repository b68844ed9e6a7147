package app

import (
	"encoding/json"
	"sort"
)

// FieldChange is one field-level difference between two entity states.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// Diff returns the changes between two flat value maps, one entry per key
// whose values differ structurally (compared by canonical JSON, so slices
// and nested maps compare by content, not identity). The key set is the
// union of both maps, so added and removed optional fields are detected.
// Output is ordered by field name for determinism.
//
// An empty diff gates out no-op writes: callers skip both the mutation's
// history entry and its change list when nothing actually changed.
func Diff(before, after map[string]any) []FieldChange {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	fields := make([]string, 0, len(keys))
	for k := range keys {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var changes []FieldChange
	for _, f := range fields {
		oldV, hadOld := before[f]
		newV, hadNew := after[f]
		if hadOld && hadNew && jsonEqual(oldV, newV) {
			continue
		}
		if !hadOld && !hadNew {
			continue
		}
		changes = append(changes, FieldChange{Field: f, OldValue: oldV, NewValue: newV})
	}
	return changes
}

// jsonEqual compares two values by their canonical JSON serialization.
// Marshal failures (non-serializable values) compare as unequal, which is
// the safe direction: a spurious change is recorded rather than a real one
// swallowed.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}

// changedValues extracts the old-value side of a change list as a flat map,
// the shape stored in undo payloads as previousValues.
func changedValues(changes []FieldChange) map[string]any {
	values := make(map[string]any, len(changes))
	for _, c := range changes {
		values[c.Field] = c.OldValue
	}
	return values
}
