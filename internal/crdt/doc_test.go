package crdt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEditUpdatesCell(t *testing.T) {
	doc := NewDoc(9)

	require.NoError(t, doc.SetStreamID(4, "stream-a"))
	require.NoError(t, doc.SetDimensions(4, 2, 2))

	cell, err := doc.Cell(4)
	require.NoError(t, err)
	assert.Equal(t, "stream-a", cell.StreamID)
	assert.Equal(t, 2, cell.Width)
	assert.Equal(t, 2, cell.Height)
}

func TestOutOfRangeEdit(t *testing.T) {
	doc := NewDoc(4)

	assert.Error(t, doc.SetStreamID(4, "stream-a"))
	assert.Error(t, doc.SetStreamID(-1, "stream-a"))
}

func TestReplicasConvergeRegardlessOfOrder(t *testing.T) {
	a := NewDoc(9)
	b := NewDoc(9)

	var fromA, fromB [][]byte
	a.OnUpdate(func(update []byte, origin string) {
		if origin == "" {
			fromA = append(fromA, update)
		}
	})
	b.OnUpdate(func(update []byte, origin string) {
		if origin == "" {
			fromB = append(fromB, update)
		}
	})

	require.NoError(t, a.SetStreamID(0, "left"))
	require.NoError(t, a.SetDimensions(0, 2, 1))
	require.NoError(t, b.SetStreamID(8, "right"))

	// Deliver in opposite orders to each side.
	for _, u := range fromB {
		require.NoError(t, a.ApplyUpdate(u, "peer"))
	}
	for i := len(fromA) - 1; i >= 0; i-- {
		require.NoError(t, b.ApplyUpdate(fromA[i], "peer"))
	}

	assert.Equal(t, a.Cells(), b.Cells())

	cell, err := a.Cell(8)
	require.NoError(t, err)
	assert.Equal(t, "right", cell.StreamID)
}

func TestApplyUpdateIsIdempotent(t *testing.T) {
	a := NewDoc(4)
	b := NewDoc(4)

	var update []byte
	a.OnUpdate(func(u []byte, origin string) { update = u })
	require.NoError(t, a.SetStreamID(1, "stream-a"))

	require.NoError(t, b.ApplyUpdate(update, "peer"))
	require.NoError(t, b.ApplyUpdate(update, "peer"))
	require.NoError(t, b.ApplyUpdate(update, "peer"))

	assert.Equal(t, a.Cells(), b.Cells())
}

func TestHigherClockWins(t *testing.T) {
	doc := NewDoc(1)
	doc.replica = "m"

	newer := encodeEntries([]entry{{idx: 0, field: fieldStreamID, clock: 5, replica: "z", strVal: "new"}})
	older := encodeEntries([]entry{{idx: 0, field: fieldStreamID, clock: 3, replica: "z", strVal: "old"}})

	require.NoError(t, doc.ApplyUpdate(newer, "peer"))
	require.NoError(t, doc.ApplyUpdate(older, "peer"))

	cell, err := doc.Cell(0)
	require.NoError(t, err)
	assert.Equal(t, "new", cell.StreamID)
}

func TestEqualClockTieBreaksOnReplicaID(t *testing.T) {
	low := encodeEntries([]entry{{idx: 0, field: fieldStreamID, clock: 7, replica: "aaa", strVal: "from-low"}})
	high := encodeEntries([]entry{{idx: 0, field: fieldStreamID, clock: 7, replica: "zzz", strVal: "from-high"}})

	// Both delivery orders resolve to the greater replica ID.
	first := NewDoc(1)
	require.NoError(t, first.ApplyUpdate(low, "peer"))
	require.NoError(t, first.ApplyUpdate(high, "peer"))

	second := NewDoc(1)
	require.NoError(t, second.ApplyUpdate(high, "peer"))
	require.NoError(t, second.ApplyUpdate(low, "peer"))

	c1, err := first.Cell(0)
	require.NoError(t, err)
	c2, err := second.Cell(0)
	require.NoError(t, err)
	assert.Equal(t, "from-high", c1.StreamID)
	assert.Equal(t, c1, c2)
}

func TestEncodeStateBootstrapsNewReplica(t *testing.T) {
	a := NewDoc(9)
	require.NoError(t, a.SetStreamID(2, "stream-a"))
	require.NoError(t, a.SetDimensions(2, 3, 1))
	require.NoError(t, a.SetStreamID(5, "stream-b"))

	b := NewDoc(9)
	require.NoError(t, b.ApplyUpdate(a.EncodeState(), "peer"))

	assert.Equal(t, a.Cells(), b.Cells())
}

func TestUpdatesRelayedToSubscribersWithOrigin(t *testing.T) {
	doc := NewDoc(1)

	var gotOrigin string
	var gotUpdate []byte
	doc.OnUpdate(func(update []byte, origin string) {
		gotUpdate = update
		gotOrigin = origin
	})

	in := encodeEntries([]entry{{idx: 0, field: fieldStreamID, clock: 1, replica: "r", strVal: "x"}})
	require.NoError(t, doc.ApplyUpdate(in, "conn-42"))

	assert.Equal(t, "conn-42", gotOrigin)
	assert.Equal(t, in, gotUpdate)
}

func TestUnknownCellsIgnored(t *testing.T) {
	doc := NewDoc(2)

	update := encodeEntries([]entry{
		{idx: 10, field: fieldStreamID, clock: 1, replica: "r", strVal: "x"},
		{idx: 1, field: fieldStreamID, clock: 1, replica: "r", strVal: "kept"},
	})
	require.NoError(t, doc.ApplyUpdate(update, "peer"))

	cell, err := doc.Cell(1)
	require.NoError(t, err)
	assert.Equal(t, "kept", cell.StreamID)
}

func TestMalformedUpdateRejected(t *testing.T) {
	doc := NewDoc(1)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad version", []byte{99, 0, 1}},
		{"truncated header", []byte{codecVersion, 0}},
		{"truncated entry", []byte{codecVersion, 0, 1, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, doc.ApplyUpdate(tt.data, "peer"))
		})
	}
}

func TestCodecRoundTrip(t *testing.T) {
	in := []entry{
		{idx: 0, field: fieldStreamID, clock: 12, replica: "replica-a", strVal: "stream"},
		{idx: 3, field: fieldWidth, clock: 4, replica: "replica-b", intVal: 2},
		{idx: 3, field: fieldHeight, clock: 5, replica: "replica-b", intVal: 3},
		{idx: 1, field: fieldStreamID, clock: 0, replica: "", strVal: ""},
	}

	out, err := decodeEntries(encodeEntries(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
