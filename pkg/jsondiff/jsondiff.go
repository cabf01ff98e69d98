// Package jsondiff computes structural diffs between JSON-like values and
// applies them, in the style of JSON merge patch: object diffs are partial
// maps, removed keys map to null, and arrays and scalars are replaced
// wholesale. Null is reserved for deletion, so Normalize strips explicit
// null object members; an absent key and a null key are the same state.
package jsondiff

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Diff returns a patch that transforms old into new, and whether the two
// values differ at all. Both values must be JSON-shaped (maps, slices,
// strings, numbers, bools, nil), as produced by Normalize.
func Diff(old, new interface{}) (interface{}, bool) {
	if reflect.DeepEqual(old, new) {
		return nil, false
	}

	oldMap, oldOK := old.(map[string]interface{})
	newMap, newOK := new.(map[string]interface{})
	if !oldOK || !newOK {
		return new, true
	}

	patch := make(map[string]interface{})
	for key, oldVal := range oldMap {
		newVal, present := newMap[key]
		if !present {
			patch[key] = nil
			continue
		}
		if sub, changed := Diff(oldVal, newVal); changed {
			patch[key] = sub
		}
	}
	for key, newVal := range newMap {
		if _, present := oldMap[key]; !present {
			patch[key] = newVal
		}
	}
	return patch, true
}

// Patch applies a patch produced by Diff to old and returns the new value.
// The input is not modified.
func Patch(old, patch interface{}) interface{} {
	patchMap, ok := patch.(map[string]interface{})
	if !ok {
		return patch
	}

	oldMap, ok := old.(map[string]interface{})
	if !ok {
		oldMap = map[string]interface{}{}
	}

	result := make(map[string]interface{}, len(oldMap))
	for key, val := range oldMap {
		result[key] = val
	}
	for key, val := range patchMap {
		if val == nil {
			delete(result, key)
			continue
		}
		result[key] = Patch(result[key], val)
	}
	return result
}

// Normalize round-trips a value through JSON encoding so that Diff and Patch
// operate on plain maps and slices regardless of the original Go types.
// Explicit null object members are dropped: the patch format uses null to
// mean deletion, so a null-valued key could never round-trip.
func Normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	return stripNulls(out), nil
}

// stripNulls removes null object members recursively. Null array elements are
// positional and stay; arrays are replaced wholesale anyway.
func stripNulls(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for key, member := range val {
			if member == nil {
				delete(val, key)
				continue
			}
			val[key] = stripNulls(member)
		}
		return val
	case []interface{}:
		for i, member := range val {
			val[i] = stripNulls(member)
		}
		return val
	default:
		return v
	}
}
