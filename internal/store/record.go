package store

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// rawRecord is the persisted shape of every record: an untyped field map.
// Typed entities exist only at the port boundary; the sort/filter algorithm
// runs once, here, over the raw form.
type rawRecord map[string]any

// createdDateField is the fallback sort field for records missing the
// requested one.
const createdDateField = "created_date"

// sortField splits a sort expression into field name and direction.
// A leading '-' means descending; an empty expression sorts by
// created_date descending.
func sortField(expr string) (field string, descending bool) {
	descending = strings.HasPrefix(expr, "-")
	field = strings.TrimPrefix(expr, "-")
	if field == "" {
		field = createdDateField
		descending = true
	}
	return field, descending
}

// sortRecords orders items in place by the sort expression. Ties are broken
// arbitrarily; stable order is not part of the contract.
func sortRecords(items []rawRecord, expr string) {
	field, descending := sortField(expr)
	sort.Slice(items, func(i, j int) bool {
		c := compareValues(sortValue(items[i], field), sortValue(items[j], field))
		if descending {
			return c > 0
		}
		return c < 0
	})
}

// sortValue resolves the comparison value for a record: the requested field
// when present, otherwise created_date, otherwise nil.
func sortValue(rec rawRecord, field string) any {
	if v, ok := rec[field]; ok && v != nil {
		return v
	}
	if v, ok := rec[createdDateField]; ok {
		return v
	}
	return nil
}

// compareValues orders two JSON-decoded values. Numbers compare
// numerically, strings lexically, booleans false-before-true; nil sorts
// before everything. Mixed types fall back to their string forms.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if an, aok := a.(float64); aok {
		if bn, bok := b.(float64); bok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case !ab && bb:
				return -1
			case ab && !bb:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// filterRecords keeps records where every criteria key matches by strict
// equality. Criteria values are JSON-normalized first so a typed value
// (int, struct field) compares equal to its decoded form.
func filterRecords(items []rawRecord, criteria map[string]any) []rawRecord {
	if len(criteria) == 0 {
		return items
	}

	normalized := make(map[string]any, len(criteria))
	for k, v := range criteria {
		normalized[k] = normalizeValue(v)
	}

	out := items[:0]
	for _, rec := range items {
		if matchesAll(rec, normalized) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAll(rec rawRecord, criteria map[string]any) bool {
	for k, want := range criteria {
		if !valuesEqual(rec[k], want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(normalizeValue(a), b)
}

// normalizeValue round-trips v through JSON so all values share the
// decoded representation (float64 numbers, string, bool, nil).
func normalizeValue(v any) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case string, float64, bool:
		return v
	}
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// truncate applies the result limit without altering relative order.
// limit <= 0 means no truncation.
func truncate(items []rawRecord, limit int) []rawRecord {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// encodeRecord converts a typed record to its raw persisted form.
func encodeRecord[T any](rec T) (rawRecord, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var raw rawRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	if raw == nil {
		raw = rawRecord{}
	}
	return raw, nil
}

// decodeRecords converts raw records back to the typed form. Unknown fields
// are dropped; missing fields stay zero-valued.
func decodeRecords[T any](items []rawRecord) ([]T, error) {
	b, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	out := make([]T, 0, len(items))
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return out, nil
}

func decodeRecord[T any](raw rawRecord) (T, error) {
	var out T
	b, err := json.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode record: %w", err)
	}
	return out, nil
}
