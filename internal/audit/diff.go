package audit

import (
	"bytes"
	"encoding/json"

	"github.com/white/sales-tracker/internal/models"
)

// Diff computes a field-level change map between a fetched "before" snapshot
// and the fields actually supplied in a mutation request. Comparison is
// request-driven: only keys present in after are considered, so fields the
// request never touched are never reported as changed.
//
// Equality is structural, by serialized form, not by reference. This matters
// for slice- and map-valued fields (a list of sample products, say) where a
// reference comparison would over-report changes.
func Diff(before, after map[string]interface{}) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)
	for field, newValue := range after {
		oldValue := before[field]
		if !structurallyEqual(oldValue, newValue) {
			changes[field] = models.FieldChange{OldValue: oldValue, NewValue: newValue}
		}
	}
	return changes
}

func structurallyEqual(a, b interface{}) bool {
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(aj, bj)
}
