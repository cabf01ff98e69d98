package jsondiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(t *testing.T, v interface{}) interface{} {
	t.Helper()
	out, err := Normalize(v)
	require.NoError(t, err)
	return out
}

func TestDiffEqualValues(t *testing.T) {
	old := norm(t, map[string]interface{}{"a": 1, "b": []int{1, 2}})
	new := norm(t, map[string]interface{}{"a": 1, "b": []int{1, 2}})

	_, changed := Diff(old, new)
	assert.False(t, changed)
}

func TestDiffIsPartialForObjects(t *testing.T) {
	old := norm(t, map[string]interface{}{"a": 1, "b": "x", "c": true})
	new := norm(t, map[string]interface{}{"a": 2, "b": "x", "c": true})

	patch, changed := Diff(old, new)
	require.True(t, changed)
	assert.Equal(t, map[string]interface{}{"a": float64(2)}, patch)
}

func TestDiffRemovedKeysMapToNull(t *testing.T) {
	old := norm(t, map[string]interface{}{"a": 1, "b": "x"})
	new := norm(t, map[string]interface{}{"a": 1})

	patch, changed := Diff(old, new)
	require.True(t, changed)
	assert.Equal(t, map[string]interface{}{"b": nil}, patch)
}

func TestDiffReplacesArraysWholesale(t *testing.T) {
	old := norm(t, map[string]interface{}{"items": []int{1, 2, 3}})
	new := norm(t, map[string]interface{}{"items": []int{1, 2, 4}})

	patch, changed := Diff(old, new)
	require.True(t, changed)
	assert.Equal(t, map[string]interface{}{
		"items": []interface{}{float64(1), float64(2), float64(4)},
	}, patch)
}

func TestPatchRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		old  interface{}
		new  interface{}
	}{
		{
			"nested objects",
			map[string]interface{}{
				"config":  map[string]interface{}{"gridCount": 3},
				"streams": []map[string]interface{}{{"_id": "a", "link": "https://example.com"}},
			},
			map[string]interface{}{
				"config":  map[string]interface{}{"gridCount": 4},
				"streams": []map[string]interface{}{},
			},
		},
		{
			"section appears",
			map[string]interface{}{"views": []int{}},
			map[string]interface{}{"views": []int{}, "auth": map[string]interface{}{"invites": []int{}}},
		},
		{
			"section disappears",
			map[string]interface{}{"views": []int{}, "auth": map[string]interface{}{"invites": []int{}}},
			map[string]interface{}{"views": []int{}},
		},
		{
			"scalar replaced by object",
			map[string]interface{}{"v": 1},
			map[string]interface{}{"v": map[string]interface{}{"nested": true}},
		},
		{
			"null to value",
			map[string]interface{}{"startTime": nil},
			map[string]interface{}{"startTime": 12345},
		},
		{
			"value to null",
			map[string]interface{}{"startTime": 12345, "isStreamRunning": true},
			map[string]interface{}{"startTime": nil, "isStreamRunning": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := norm(t, tt.old)
			new := norm(t, tt.new)

			patch, changed := Diff(old, new)
			require.True(t, changed)
			assert.Equal(t, new, Patch(old, patch))
		})
	}
}

func TestNormalizeDropsExplicitNulls(t *testing.T) {
	got := norm(t, map[string]interface{}{
		"isConnected": true,
		"startTime":   nil,
		"nested":      map[string]interface{}{"inner": nil, "kept": 1},
		"items":       []interface{}{nil, "a"},
	})

	assert.Equal(t, map[string]interface{}{
		"isConnected": true,
		"nested":      map[string]interface{}{"kept": float64(1)},
		"items":       []interface{}{nil, "a"},
	}, got)
}

func TestValueToNullProducesDeletion(t *testing.T) {
	ts := int64(12345)
	old := norm(t, map[string]interface{}{"streamdelay": map[string]interface{}{
		"isStreamRunning": true, "startTime": ts,
	}})
	new := norm(t, map[string]interface{}{"streamdelay": map[string]interface{}{
		"isStreamRunning": true, "startTime": (*int64)(nil),
	}})

	patch, changed := Diff(old, new)
	require.True(t, changed)
	assert.Equal(t, map[string]interface{}{
		"streamdelay": map[string]interface{}{"startTime": nil},
	}, patch)
	assert.Equal(t, new, Patch(old, patch))
}

func TestPatchDoesNotModifyInput(t *testing.T) {
	old := norm(t, map[string]interface{}{"a": map[string]interface{}{"b": 1}})
	new := norm(t, map[string]interface{}{"a": map[string]interface{}{"b": 2}})

	patch, _ := Diff(old, new)
	_ = Patch(old, patch)

	assert.Equal(t, norm(t, map[string]interface{}{"a": map[string]interface{}{"b": 1}}), old)
}
